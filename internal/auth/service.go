package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mssola/useragent"

	"chainsync/internal/audit"
	"chainsync/internal/auth/secrets"
	"chainsync/internal/auth/token"
	"chainsync/internal/platform/metrics"
	dErrors "chainsync/pkg/domain-errors"
	"chainsync/pkg/requestcontext"
)

// UserStore is the identity lookup the verifier reads from.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (User, error)
}

// LockoutStore keeps failed-attempt metadata per identity.
type LockoutStore interface {
	IsLocked(ctx context.Context, identifier string) (bool, error)
	RecordFailure(ctx context.Context, identifier string) (*LockoutRecord, error)
	Clear(ctx context.Context, identifier string) error
}

// RevocationStore tracks revoked session tokens.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service is the credential verifier plus session issuance. Stateless with
// respect to the gateway: all state lives in the injected stores.
type Service struct {
	users     UserStore
	lockout   LockoutStore
	sessions  RevocationStore
	tokens    *token.Service
	publisher audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewService constructs the auth service.
func NewService(users UserStore, lockout LockoutStore, sessions RevocationStore, tokens *token.Service, publisher audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = audit.NopPublisher{}
	}
	return &Service{
		users:     users,
		lockout:   lockout,
		sessions:  sessions,
		tokens:    tokens,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Verify validates a presented identity against stored credentials. Returns
// ErrUnknownIdentity, ErrBadSecret, or ErrAccountLocked; the first two must
// be collapsed to one caller-visible response by whoever surfaces them.
// This call does the bcrypt comparison and may block; the gate must not hold
// any lock across it.
func (s *Service) Verify(ctx context.Context, username, secret string) (Principal, error) {
	locked, err := s.lockout.IsLocked(ctx, username)
	if err != nil {
		return Principal{}, dErrors.Wrap(err, dErrors.CodeInternal, "lockout check failed")
	}
	if locked {
		s.countLogin("locked")
		return Principal{}, ErrAccountLocked
	}

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			s.recordFailure(ctx, username, "unknown_identity")
			return Principal{}, ErrUnknownIdentity
		}
		return Principal{}, dErrors.Wrap(err, dErrors.CodeInternal, "identity lookup failed")
	}

	if err := secrets.Verify(secret, u.PasswordHash); err != nil {
		if errors.Is(err, secrets.ErrMismatch) {
			s.recordFailure(ctx, username, "bad_secret")
			return Principal{}, ErrBadSecret
		}
		return Principal{}, dErrors.Wrap(err, dErrors.CodeInternal, "credential verification failed")
	}

	if err := s.lockout.Clear(ctx, username); err != nil {
		s.logger.WarnContext(ctx, "clearing lockout metadata failed", "error", err)
	}
	return Principal{ID: u.ID, Username: u.Username}, nil
}

// LoginResult carries the issued session.
type LoginResult struct {
	Principal Principal
	Token     string
	ExpiresAt time.Time
}

// IssueSession mints a session token for an already-verified principal and
// audits the login with a device summary.
func (s *Service) IssueSession(ctx context.Context, principal Principal) (LoginResult, error) {
	signed, jti, expiresAt, err := s.tokens.Generate(principal.ID, principal.Username)
	if err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed")
	}

	s.countLogin("success")
	s.logger.InfoContext(ctx, "login succeeded",
		"request_id", requestcontext.RequestID(ctx),
		"username", principal.Username,
	)

	event := audit.NewEvent(audit.EventLoginSucceeded, requestcontext.Now(ctx))
	event.Actor = principal.Username
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Details["session_id"] = jti
	addDeviceSummary(event, requestcontext.UserAgent(ctx))
	s.publisher.Publish(ctx, event)

	return LoginResult{Principal: principal, Token: signed, ExpiresAt: expiresAt}, nil
}

// RevokeSession marks the session token revoked until its expiry.
func (s *Service) RevokeSession(ctx context.Context, jti string, expiresAt time.Time) error {
	if err := s.sessions.Revoke(ctx, jti, expiresAt); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "session revocation failed")
	}
	return nil
}

// IsSessionRevoked reports whether the token ID has been revoked.
func (s *Service) IsSessionRevoked(ctx context.Context, jti string) (bool, error) {
	return s.sessions.IsRevoked(ctx, jti)
}

// ValidateToken verifies a session token's signature and claims.
func (s *Service) ValidateToken(tokenString string) (*token.Claims, error) {
	return s.tokens.Validate(tokenString)
}

// recordFailure logs the internal variant and feeds the lockout metadata.
// The variant never reaches the caller-visible response.
func (s *Service) recordFailure(ctx context.Context, username, reason string) {
	s.countLogin(reason)
	s.logger.WarnContext(ctx, "login failed",
		"request_id", requestcontext.RequestID(ctx),
		"username", username,
		"reason", reason,
	)
	if _, err := s.lockout.RecordFailure(ctx, username); err != nil {
		s.logger.WarnContext(ctx, "recording lockout failure failed", "error", err)
	}

	event := audit.NewEvent(audit.EventLoginFailed, requestcontext.Now(ctx))
	event.Actor = username
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Details["reason"] = reason
	addDeviceSummary(event, requestcontext.UserAgent(ctx))
	s.publisher.Publish(ctx, event)
}

func (s *Service) countLogin(result string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
}

// addDeviceSummary attaches a parsed browser/OS summary to audit events so
// operators can spot anomalous clients without storing raw user agents.
func addDeviceSummary(event audit.Event, rawUA string) {
	if rawUA == "" {
		return
	}
	ua := useragent.New(rawUA)
	browser, version := ua.Browser()
	event.Details["browser"] = browser + " " + version
	event.Details["os"] = ua.OS()
	if ua.Bot() {
		event.Details["bot"] = "true"
	}
}
