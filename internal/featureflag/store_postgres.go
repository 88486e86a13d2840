package featureflag

import (
	"context"
	"fmt"

	"chainsync/internal/platform/postgres"
)

// PostgresStore persists flag state so toggles survive restarts. The
// in-memory store remains the per-request read path; this store is hydrated
// at startup and written through on every Set.
type PostgresStore struct {
	pool *postgres.Pool
}

// NewPostgres constructs a PostgreSQL-backed flag store.
func NewPostgres(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Upsert(ctx context.Context, flag Flag) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO feature_flags (name, enabled, updated_at, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET enabled = $2, updated_at = $3, updated_by = $4`,
		flag.Name, flag.Enabled, flag.UpdatedAt, flag.UpdatedBy)
	if err != nil {
		return fmt.Errorf("upsert feature flag: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Flag, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, enabled, updated_at, updated_by
		FROM feature_flags
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list feature flags: %w", err)
	}
	defer rows.Close()

	var flags []Flag
	for rows.Next() {
		var flag Flag
		if err := rows.Scan(&flag.Name, &flag.Enabled, &flag.UpdatedAt, &flag.UpdatedBy); err != nil {
			return nil, fmt.Errorf("scan feature flag: %w", err)
		}
		flags = append(flags, flag)
	}
	return flags, rows.Err()
}

// Schema is the DDL for the feature flag table, applied by migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS feature_flags (
	name TEXT PRIMARY KEY,
	enabled BOOLEAN NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	updated_by TEXT NOT NULL DEFAULT ''
);`
