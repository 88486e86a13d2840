// Package settings persists the administrative settings surface. Four
// domains exist: store profile, credential change, notification
// preferences, and integration configuration. Each domain is its own unit
// of validation and persistence; domains share no transactional scope, so
// one domain failing never rolls back or blocks another.
package settings

import (
	"time"
)

// Domain identifies one independently-applied settings category.
type Domain string

const (
	DomainStoreProfile  Domain = "store_profile"
	DomainCredential    Domain = "credential"
	DomainNotifications Domain = "notifications"
	DomainIntegrations  Domain = "integrations"
)

// Acknowledgment wording per domain. The exact strings are part of the
// product contract; clients render them verbatim.
const (
	AckStoreProfile  = "Store settings saved successfully."
	AckCredential    = "Password changed successfully."
	AckNotifications = "Notification settings saved."
	AckIntegrations  = "Integration settings saved."
)

// StoreProfile is the store identity and contact form.
type StoreProfile struct {
	StoreName string    `json:"store_name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CredentialChange is the password-change form. Never persisted as-is; the
// coordinator hands the new secret to the identity store for hashing.
type CredentialChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// NotificationPreferences is the alerting form.
type NotificationPreferences struct {
	LowStockAlerts     bool      `json:"low_stock_alerts"`
	DailySalesSummary  bool      `json:"daily_sales_summary"`
	EmailNotifications bool      `json:"email_notifications"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IntegrationConfig is the third-party integrations form.
type IntegrationConfig struct {
	PaymentGateway  bool      `json:"payment_gateway"`
	AccountingSync  bool      `json:"accounting_sync"`
	EcommercePlugin bool      `json:"ecommerce_plugin"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Outcome is one domain's apply result. Exactly one of Ack or Err is set.
type Outcome struct {
	Domain Domain `json:"domain"`
	Ack    string `json:"message,omitempty"`
	Err    error  `json:"-"`
}

// Succeeded reports whether the domain's apply completed.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}
