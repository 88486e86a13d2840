package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"chainsync/internal/admin"
	"chainsync/internal/admission"
	"chainsync/internal/ai"
	"chainsync/internal/allowlist"
	"chainsync/internal/audit"
	"chainsync/internal/auth"
	authhandler "chainsync/internal/auth/handler"
	"chainsync/internal/auth/secrets"
	"chainsync/internal/auth/store/session"
	"chainsync/internal/auth/store/user"
	"chainsync/internal/auth/token"
	"chainsync/internal/featureflag"
	httptransport "chainsync/internal/http"
	"chainsync/internal/platform/config"
	"chainsync/internal/platform/httpserver"
	"chainsync/internal/platform/logger"
	"chainsync/internal/platform/metrics"
	"chainsync/internal/platform/postgres"
	"chainsync/internal/platform/redis"
	"chainsync/internal/settings"
	settingshandler "chainsync/internal/settings/handler"
	dErrors "chainsync/pkg/domain-errors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chainsync-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if pool != nil {
		defer pool.Close()
		if err := applySchemas(ctx, pool); err != nil {
			return fmt.Errorf("apply schemas: %w", err)
		}
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var publisher audit.Publisher = audit.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := audit.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// Allow-list: memory answers every check; Postgres keeps edits across
	// restarts.
	allowMemory := allowlist.NewInMemoryStore()
	var allowPersistent allowlist.PersistentStore
	if pool != nil {
		allowPersistent = allowlist.NewPostgres(pool)
	}
	allowSvc := allowlist.NewService(allowMemory, allowPersistent, publisher, log)
	if err := allowSvc.Hydrate(ctx); err != nil {
		return fmt.Errorf("hydrate allowlist: %w", err)
	}
	allowSvc.Seed(ctx, cfg.AllowedOrigins, "config")

	// Feature flags, same split.
	flagMemory := featureflag.NewInMemoryStore()
	var flagPersistent featureflag.PersistentStore
	if pool != nil {
		flagPersistent = featureflag.NewPostgres(pool)
	}
	flagSvc := featureflag.NewService(flagMemory, flagPersistent, publisher, m, log)
	// Config seeds the flag; persisted toggles override it on hydrate.
	if _, err := flagMemory.Set(ctx, featureflag.FlagAI, cfg.AIEnabled, "config"); err != nil {
		return fmt.Errorf("seed ai flag: %w", err)
	}
	if err := flagSvc.Hydrate(ctx); err != nil {
		return fmt.Errorf("hydrate feature flags: %w", err)
	}

	// Identity stores.
	var users userStore
	if pool != nil {
		users = user.NewPostgres(pool)
	} else {
		users = user.NewInMemoryStore()
	}
	if err := seedAdminUser(ctx, users); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	var revocation auth.RevocationStore
	if redisClient != nil {
		revocation = session.NewRedis(redisClient)
	} else {
		revocation = session.NewInMemoryStore()
	}

	tokens := token.NewService(cfg.JWTSigningKey, cfg.SessionTTL)
	authSvc := auth.NewService(users,
		auth.NewInMemoryLockoutStore(auth.DefaultLockoutPolicy()),
		revocation, tokens, publisher, m, log)

	// Settings.
	var settingsStore settings.Store
	if pool != nil {
		settingsStore = settings.NewPostgres(pool)
	} else {
		settingsStore = settings.NewInMemoryStore()
	}
	coordinator := settings.NewCoordinator(settingsStore, users, publisher, m, log)

	// Admission pipeline and the gated AI surface.
	registry := admission.NewRegistry()
	gate := admission.NewGate(allowSvc, authSvc, flagSvc, registry, publisher, m, log)

	aiHandler := ai.NewHandler(ai.NewService(coordinator))
	if err := aiHandler.RegisterGated(registry); err != nil {
		return fmt.Errorf("register ai routes: %w", err)
	}

	resolveUsername := func(ctx context.Context, userID string) (string, error) {
		id, err := uuid.Parse(userID)
		if err != nil {
			return "", err
		}
		u, err := users.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		return u.Username, nil
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Gate:     gate,
		Auth:     authhandler.New(gate, authSvc, log),
		Admin:    admin.New(flagSvc, allowSvc, log),
		Settings: settingshandler.New(coordinator, resolveUsername, log),
		Sessions: authSvc,
		Revoked:  authSvc,
		Logger:   log,
	})

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("chainsync gateway listening",
			"addr", cfg.Addr,
			"origin_enforcement", len(cfg.AllowedOrigins) > 0,
			"ai_enabled", cfg.AIEnabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// userStore is the union of what the verifier, the settings coordinator, and
// seeding need from an identity store.
type userStore interface {
	auth.UserStore
	settings.CredentialStore
	Create(ctx context.Context, u auth.User) error
	FindByID(ctx context.Context, id uuid.UUID) (auth.User, error)
}

// seedAdminUser provisions the bootstrap administrator when no account
// exists yet. The default credentials are for first login only; the settings
// credential domain is the supported way to change them.
func seedAdminUser(ctx context.Context, users userStore) error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	if _, err := users.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !dErrors.Is(err, dErrors.CodeNotFound) {
		return err
	}

	hash, err := secrets.Hash(password)
	if err != nil {
		return err
	}
	return users.Create(ctx, auth.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@chainsync.local",
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	})
}

// applySchemas creates the gateway tables when they do not exist yet.
func applySchemas(ctx context.Context, pool *postgres.Pool) error {
	for _, schema := range []string{
		user.Schema,
		allowlist.Schema,
		featureflag.Schema,
		settings.Schema,
	} {
		if _, err := pool.Exec(ctx, schema); err != nil {
			return err
		}
	}
	return nil
}
