package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"chainsync/internal/platform/postgres"
)

// PostgresStore persists each settings domain in its own single-row table.
// One upsert per domain keeps the per-domain atomicity contract: a failed
// write touches exactly one table. Reads on a fresh database return zero
// values, matching the memory store.
type PostgresStore struct {
	pool *postgres.Pool
}

// NewPostgres constructs a PostgreSQL-backed settings store.
func NewPostgres(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) SaveProfile(ctx context.Context, p StoreProfile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO store_profile (id, store_name, address, phone, email, updated_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET store_name = $1, address = $2, phone = $3, email = $4, updated_at = $5`,
		p.StoreName, p.Address, p.Phone, p.Email, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save store profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context) (StoreProfile, error) {
	var p StoreProfile
	err := s.pool.QueryRow(ctx, `
		SELECT store_name, address, phone, email, updated_at
		FROM store_profile WHERE id = 1`).
		Scan(&p.StoreName, &p.Address, &p.Phone, &p.Email, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoreProfile{}, nil
	}
	if err != nil {
		return StoreProfile{}, fmt.Errorf("get store profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) SaveNotifications(ctx context.Context, n NotificationPreferences) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notification_preferences (id, low_stock_alerts, daily_sales_summary, email_notifications, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET low_stock_alerts = $1, daily_sales_summary = $2, email_notifications = $3, updated_at = $4`,
		n.LowStockAlerts, n.DailySalesSummary, n.EmailNotifications, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save notification preferences: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetNotifications(ctx context.Context) (NotificationPreferences, error) {
	var n NotificationPreferences
	err := s.pool.QueryRow(ctx, `
		SELECT low_stock_alerts, daily_sales_summary, email_notifications, updated_at
		FROM notification_preferences WHERE id = 1`).
		Scan(&n.LowStockAlerts, &n.DailySalesSummary, &n.EmailNotifications, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return NotificationPreferences{}, nil
	}
	if err != nil {
		return NotificationPreferences{}, fmt.Errorf("get notification preferences: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) SaveIntegrations(ctx context.Context, i IntegrationConfig) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO integration_config (id, payment_gateway, accounting_sync, ecommerce_plugin, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET payment_gateway = $1, accounting_sync = $2, ecommerce_plugin = $3, updated_at = $4`,
		i.PaymentGateway, i.AccountingSync, i.EcommercePlugin, i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save integration config: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetIntegrations(ctx context.Context) (IntegrationConfig, error) {
	var i IntegrationConfig
	err := s.pool.QueryRow(ctx, `
		SELECT payment_gateway, accounting_sync, ecommerce_plugin, updated_at
		FROM integration_config WHERE id = 1`).
		Scan(&i.PaymentGateway, &i.AccountingSync, &i.EcommercePlugin, &i.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return IntegrationConfig{}, nil
	}
	if err != nil {
		return IntegrationConfig{}, fmt.Errorf("get integration config: %w", err)
	}
	return i, nil
}

// Schema is the DDL for the settings tables, applied by migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS store_profile (
	id SMALLINT PRIMARY KEY CHECK (id = 1),
	store_name TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS notification_preferences (
	id SMALLINT PRIMARY KEY CHECK (id = 1),
	low_stock_alerts BOOLEAN NOT NULL,
	daily_sales_summary BOOLEAN NOT NULL,
	email_notifications BOOLEAN NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS integration_config (
	id SMALLINT PRIMARY KEY CHECK (id = 1),
	payment_gateway BOOLEAN NOT NULL,
	accounting_sync BOOLEAN NOT NULL,
	ecommerce_plugin BOOLEAN NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);`
