package featureflag

import (
	"context"
	"log/slog"
	"strconv"

	"chainsync/internal/audit"
	"chainsync/internal/platform/metrics"
	dErrors "chainsync/pkg/domain-errors"
	"chainsync/pkg/requestcontext"
)

// PersistentStore mirrors flag writes to durable storage.
type PersistentStore interface {
	Upsert(ctx context.Context, flag Flag) error
	List(ctx context.Context) ([]Flag, error)
}

// Service owns flag reads and writes. Reads come from the in-memory snapshot;
// writes go memory-first so the next resolution observes the toggle, then
// mirror to durable storage.
type Service struct {
	memory     *InMemoryStore
	persistent PersistentStore // nil when Postgres is not configured
	publisher  audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewService constructs the feature flag service.
func NewService(memory *InMemoryStore, persistent PersistentStore, publisher audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = audit.NopPublisher{}
	}
	return &Service{
		memory:     memory,
		persistent: persistent,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
	}
}

// Hydrate loads persisted flags into the runtime store at startup.
func (s *Service) Hydrate(ctx context.Context) error {
	if s.persistent == nil {
		return nil
	}
	flags, err := s.persistent.List(ctx)
	if err != nil {
		return err
	}
	for _, flag := range flags {
		if _, err := s.memory.Set(ctx, flag.Name, flag.Enabled, flag.UpdatedBy); err != nil {
			return err
		}
	}
	s.logger.Info("feature flags hydrated", "flags", len(flags))
	return nil
}

// Get returns the current state of the named flag (closed when unknown).
func (s *Service) Get(ctx context.Context, name string) (Flag, error) {
	return s.memory.Get(ctx, name)
}

// Snapshot returns the immutable flag view route resolution runs against.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.memory.Snapshot(ctx)
}

// List returns all configured flags.
func (s *Service) List(ctx context.Context) ([]Flag, error) {
	return s.memory.List(ctx)
}

// Set toggles a flag, mirrors the write, and audits who flipped it.
func (s *Service) Set(ctx context.Context, name string, enabled bool) (Flag, error) {
	actor := requestcontext.UserID(ctx)
	flag, err := s.memory.Set(ctx, name, enabled, actor)
	if err != nil {
		return Flag{}, err
	}
	if s.persistent != nil {
		if err := s.persistent.Upsert(ctx, flag); err != nil {
			return Flag{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "feature flag not persisted")
		}
	}

	if s.metrics != nil {
		s.metrics.FlagToggles.WithLabelValues(name).Inc()
	}
	s.logger.InfoContext(ctx, "feature flag changed",
		"flag", name,
		"enabled", enabled,
		"actor", actor,
	)

	event := audit.NewEvent(audit.EventFlagChanged, flag.UpdatedAt)
	event.Actor = actor
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Details["flag"] = name
	event.Details["enabled"] = strconv.FormatBool(enabled)
	s.publisher.Publish(ctx, event)

	return flag, nil
}
