package allowlist

import (
	"context"
	"log/slog"
	"net/netip"

	"chainsync/internal/audit"
	dErrors "chainsync/pkg/domain-errors"
	"chainsync/pkg/requestcontext"
)

// PersistentStore mirrors allow-list edits to durable storage.
type PersistentStore interface {
	Add(ctx context.Context, entry *Entry) error
	Remove(ctx context.Context, origin string) error
	List(ctx context.Context) ([]*Entry, error)
}

// Service owns the runtime allow-list. The in-memory store answers every
// membership check; the persistent store, when configured, keeps the set
// across restarts.
type Service struct {
	memory     *InMemoryStore
	persistent PersistentStore // nil when Postgres is not configured
	publisher  audit.Publisher
	logger     *slog.Logger
}

// NewService constructs the allow-list service.
func NewService(memory *InMemoryStore, persistent PersistentStore, publisher audit.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = audit.NopPublisher{}
	}
	return &Service{
		memory:     memory,
		persistent: persistent,
		publisher:  publisher,
		logger:     logger,
	}
}

// Hydrate loads persisted entries into the runtime set. Called once at
// startup, before the server accepts traffic.
func (s *Service) Hydrate(ctx context.Context) error {
	if s.persistent == nil {
		return nil
	}
	entries, err := s.persistent.List(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.memory.Add(ctx, entry); err != nil {
			return err
		}
	}
	s.logger.Info("allowlist hydrated", "entries", len(entries))
	return nil
}

// Seed adds origins from static configuration, skipping invalid ones with a
// warning so one bad env entry does not keep the gateway down.
func (s *Service) Seed(ctx context.Context, origins []string, actor string) {
	for _, origin := range origins {
		entry, err := NewEntry(origin, "seeded from configuration", actor, requestcontext.Now(ctx))
		if err != nil {
			s.logger.Warn("skipping invalid allowlist seed", "origin", origin, "error", err)
			continue
		}
		if err := s.memory.Add(ctx, entry); err != nil {
			s.logger.Warn("seeding allowlist entry failed", "origin", origin, "error", err)
		}
	}
}

// IsAllowed is the per-request membership check. Deterministic,
// side-effect-free, and never touches the persistent store.
func (s *Service) IsAllowed(ctx context.Context, origin string) (bool, error) {
	addr, err := netip.ParseAddr(origin)
	if err != nil {
		// Unparseable origins fail closed when the list is enforcing.
		enforcing, enfErr := s.memory.Enforcing(ctx)
		if enfErr != nil {
			return false, enfErr
		}
		return !enforcing, nil
	}
	return s.memory.IsAllowed(ctx, addr)
}

// Add validates and records an origin, mirrors it to durable storage, and
// audits the change. Memory is written first so the next request observes the
// edit even if the mirror write fails.
func (s *Service) Add(ctx context.Context, origin, reason string) (*Entry, error) {
	actor := requestcontext.UserID(ctx)
	entry, err := NewEntry(origin, reason, actor, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.memory.Add(ctx, entry); err != nil {
		return nil, err
	}
	if s.persistent != nil {
		if err := s.persistent.Add(ctx, entry); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "allowlist entry not persisted")
		}
	}
	s.auditChange(ctx, "add", entry.Origin, actor)
	return entry, nil
}

// Remove deletes an origin from the runtime set and durable storage.
func (s *Service) Remove(ctx context.Context, origin string) error {
	if err := s.memory.Remove(ctx, origin); err != nil {
		return err
	}
	if s.persistent != nil {
		if err := s.persistent.Remove(ctx, origin); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "allowlist removal not persisted")
		}
	}
	s.auditChange(ctx, "remove", origin, requestcontext.UserID(ctx))
	return nil
}

// List returns the current runtime entries.
func (s *Service) List(ctx context.Context) ([]*Entry, error) {
	return s.memory.List(ctx)
}

func (s *Service) auditChange(ctx context.Context, action, origin, actor string) {
	event := audit.NewEvent(audit.EventAllowlistChanged, requestcontext.Now(ctx))
	event.Actor = actor
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Details["action"] = action
	event.Details["origin"] = origin
	s.publisher.Publish(ctx, event)
}
