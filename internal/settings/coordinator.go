package settings

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"chainsync/internal/audit"
	"chainsync/internal/auth"
	"chainsync/internal/auth/secrets"
	"chainsync/internal/platform/metrics"
	dErrors "chainsync/pkg/domain-errors"
	"chainsync/pkg/requestcontext"
)

// Store persists the three non-credential settings domains.
type Store interface {
	SaveProfile(ctx context.Context, p StoreProfile) error
	GetProfile(ctx context.Context) (StoreProfile, error)
	SaveNotifications(ctx context.Context, n NotificationPreferences) error
	GetNotifications(ctx context.Context) (NotificationPreferences, error)
	SaveIntegrations(ctx context.Context, i IntegrationConfig) error
	GetIntegrations(ctx context.Context) (IntegrationConfig, error)
}

// CredentialStore is the identity store slice the credential domain writes
// through.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (auth.User, error)
	UpdatePasswordHash(ctx context.Context, username, hash string) error
}

// Coordinator applies settings submissions domain by domain. Each domain
// validates and persists on its own; a failure in one never rolls back or
// blocks another. Domains submitted together run concurrently.
type Coordinator struct {
	store     Store
	users     CredentialStore
	publisher audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewCoordinator constructs the settings coordinator.
func NewCoordinator(store Store, users CredentialStore, publisher audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Coordinator {
	if publisher == nil {
		publisher = audit.NopPublisher{}
	}
	return &Coordinator{
		store:     store,
		users:     users,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Submission bundles the domains presented in one request. Nil fields mean
// the domain was not submitted.
type Submission struct {
	Profile       *StoreProfile
	Credential    *CredentialChange
	Notifications *NotificationPreferences
	Integrations  *IntegrationConfig
}

// Apply runs every submitted domain concurrently and returns one outcome
// per domain, in a fixed order. No outcome depends on any other.
func (c *Coordinator) Apply(ctx context.Context, username string, sub Submission) []Outcome {
	var (
		mu       sync.Mutex
		outcomes []Outcome
	)
	record := func(o Outcome) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	if sub.Profile != nil {
		g.Go(func() error {
			record(c.ApplyProfile(gctx, *sub.Profile))
			return nil
		})
	}
	if sub.Credential != nil {
		g.Go(func() error {
			record(c.ApplyCredential(gctx, username, *sub.Credential))
			return nil
		})
	}
	if sub.Notifications != nil {
		g.Go(func() error {
			record(c.ApplyNotifications(gctx, *sub.Notifications))
			return nil
		})
	}
	if sub.Integrations != nil {
		g.Go(func() error {
			record(c.ApplyIntegrations(gctx, *sub.Integrations))
			return nil
		})
	}
	_ = g.Wait()

	ordered := make([]Outcome, 0, len(outcomes))
	for _, d := range []Domain{DomainStoreProfile, DomainCredential, DomainNotifications, DomainIntegrations} {
		for _, o := range outcomes {
			if o.Domain == d {
				ordered = append(ordered, o)
			}
		}
	}
	return ordered
}

// ApplyProfile validates and persists the store profile.
func (c *Coordinator) ApplyProfile(ctx context.Context, p StoreProfile) Outcome {
	if err := p.Validate(); err != nil {
		return c.failed(ctx, DomainStoreProfile, err)
	}
	p.UpdatedAt = requestcontext.Now(ctx)
	if err := c.store.SaveProfile(ctx, p); err != nil {
		return c.failed(ctx, DomainStoreProfile, persistError(err))
	}
	return c.succeeded(ctx, DomainStoreProfile, AckStoreProfile)
}

// ApplyCredential validates the password-change form, checks the current
// secret, and writes the new derivation through the identity store.
func (c *Coordinator) ApplyCredential(ctx context.Context, username string, ch CredentialChange) Outcome {
	if err := ch.Validate(); err != nil {
		return c.failed(ctx, DomainCredential, err)
	}

	u, err := c.users.FindByUsername(ctx, username)
	if err != nil {
		return c.failed(ctx, DomainCredential, persistError(err))
	}
	if err := secrets.Verify(ch.CurrentPassword, u.PasswordHash); err != nil {
		if errors.Is(err, secrets.ErrMismatch) {
			return c.failed(ctx, DomainCredential, dErrors.New(dErrors.CodeInvalidInput, "current password is incorrect"))
		}
		return c.failed(ctx, DomainCredential, persistError(err))
	}

	hash, err := secrets.Hash(ch.NewPassword)
	if err != nil {
		return c.failed(ctx, DomainCredential, err)
	}
	if err := c.users.UpdatePasswordHash(ctx, username, hash); err != nil {
		return c.failed(ctx, DomainCredential, persistError(err))
	}
	return c.succeeded(ctx, DomainCredential, AckCredential)
}

// ApplyNotifications persists the notification preferences.
func (c *Coordinator) ApplyNotifications(ctx context.Context, n NotificationPreferences) Outcome {
	n.UpdatedAt = requestcontext.Now(ctx)
	if err := c.store.SaveNotifications(ctx, n); err != nil {
		return c.failed(ctx, DomainNotifications, persistError(err))
	}
	return c.succeeded(ctx, DomainNotifications, AckNotifications)
}

// ApplyIntegrations persists the integration configuration.
func (c *Coordinator) ApplyIntegrations(ctx context.Context, i IntegrationConfig) Outcome {
	i.UpdatedAt = requestcontext.Now(ctx)
	if err := c.store.SaveIntegrations(ctx, i); err != nil {
		return c.failed(ctx, DomainIntegrations, persistError(err))
	}
	return c.succeeded(ctx, DomainIntegrations, AckIntegrations)
}

// View is the read model of the persisted settings surface. The credential
// domain has no readable state.
type View struct {
	Profile       StoreProfile            `json:"store_profile"`
	Notifications NotificationPreferences `json:"notifications"`
	Integrations  IntegrationConfig       `json:"integrations"`
}

// Get assembles the current settings view.
func (c *Coordinator) Get(ctx context.Context) (View, error) {
	var v View
	var err error
	if v.Profile, err = c.store.GetProfile(ctx); err != nil {
		return View{}, persistError(err)
	}
	if v.Notifications, err = c.store.GetNotifications(ctx); err != nil {
		return View{}, persistError(err)
	}
	if v.Integrations, err = c.store.GetIntegrations(ctx); err != nil {
		return View{}, persistError(err)
	}
	return v, nil
}

func (c *Coordinator) succeeded(ctx context.Context, domain Domain, ack string) Outcome {
	c.count(domain, "success")
	c.logger.InfoContext(ctx, "settings applied",
		"request_id", requestcontext.RequestID(ctx),
		"domain", string(domain),
	)

	event := audit.NewEvent(audit.EventSettingsApplied, requestcontext.Now(ctx))
	event.Actor = requestcontext.UserID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Details["domain"] = string(domain)
	c.publisher.Publish(ctx, event)

	return Outcome{Domain: domain, Ack: ack}
}

func (c *Coordinator) failed(ctx context.Context, domain Domain, err error) Outcome {
	outcome := "validation_error"
	if dErrors.Is(err, dErrors.CodeUnavailable) || dErrors.Is(err, dErrors.CodeInternal) {
		outcome = "persist_error"
	}
	c.count(domain, outcome)
	c.logger.WarnContext(ctx, "settings apply failed",
		"request_id", requestcontext.RequestID(ctx),
		"domain", string(domain),
		"outcome", outcome,
		"error", err,
	)
	return Outcome{Domain: domain, Err: err}
}

func (c *Coordinator) count(domain Domain, outcome string) {
	if c.metrics != nil {
		c.metrics.SettingsApplies.WithLabelValues(string(domain), outcome).Inc()
	}
}

// persistError marks a storage failure as transient and retryable. Domain
// state is untouched on failure, so retrying is always safe.
func persistError(err error) error {
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "settings storage unavailable, retry")
}
