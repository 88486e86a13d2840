package config

import (
	"os"
	"strings"
	"time"
)

// Server captures gateway-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	SessionTTL    time.Duration

	// AllowedOrigins seeds the IP allow-list (addresses or CIDR ranges,
	// comma separated). Empty means origin enforcement is disabled.
	AllowedOrigins []string

	// AIEnabled seeds the ai_enabled feature flag at startup.
	AIEnabled bool

	DatabaseURL string
	Redis       Redis
	Kafka       Kafka
}

// Redis captures connection settings for the session store.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures the audit publisher settings.
type Kafka struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CHAINSYNC_ADDR")
	if addr == "" {
		addr = ":5000"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("AUDIT_TOPIC")
	if topic == "" {
		topic = "chainsync.audit"
	}

	return Server{
		Addr:           addr,
		JWTSigningKey:  jwtSigningKey,
		SessionTTL:     12 * time.Hour,
		AllowedOrigins: splitList(os.Getenv("IP_ALLOWLIST")),
		AIEnabled:      os.Getenv("FEATURE_AI_ENABLED") == "true",
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   topic,
		},
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
