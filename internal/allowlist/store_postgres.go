package allowlist

import (
	"context"
	"fmt"
	"net/netip"

	"chainsync/internal/platform/postgres"
)

// PostgresStore persists allow-list entries so the runtime set survives
// restarts. The in-memory store stays authoritative for per-request checks;
// this store is hydrated from and mirrored to on the admin write path.
type PostgresStore struct {
	pool *postgres.Pool
}

// NewPostgres constructs a PostgreSQL-backed allow-list store.
func NewPostgres(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Add(ctx context.Context, entry *Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO allowlist_entries (id, origin, reason, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (origin) DO UPDATE SET reason = $3, created_at = $4, created_by = $5`,
		entry.ID, entry.Origin, entry.Reason, entry.CreatedAt, entry.CreatedBy)
	if err != nil {
		return fmt.Errorf("add allowlist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, origin string) error {
	prefix, err := ParseOrigin(origin)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM allowlist_entries WHERE origin = $1`, prefix.String()); err != nil {
		return fmt.Errorf("remove allowlist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, origin, reason, created_at, created_by
		FROM allowlist_entries
		ORDER BY origin`)
	if err != nil {
		return nil, fmt.Errorf("list allowlist entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := &Entry{}
		if err := rows.Scan(&entry.ID, &entry.Origin, &entry.Reason, &entry.CreatedAt, &entry.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan allowlist entry: %w", err)
		}
		prefix, err := netip.ParsePrefix(entry.Origin)
		if err != nil {
			return nil, fmt.Errorf("stored origin %q is not a valid prefix: %w", entry.Origin, err)
		}
		entry.Prefix = prefix
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Schema is the DDL for the allow-list table, applied by migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS allowlist_entries (
	id UUID PRIMARY KEY,
	origin TEXT NOT NULL UNIQUE,
	reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	created_by TEXT NOT NULL DEFAULT ''
);`
