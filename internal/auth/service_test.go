package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"chainsync/internal/auth/secrets"
	"chainsync/internal/auth/token"
	dErrors "chainsync/pkg/domain-errors"
	"chainsync/pkg/requestcontext"
)

type fakeUserStore struct {
	user User
	err  error
}

func (f *fakeUserStore) FindByUsername(context.Context, string) (User, error) {
	if f.err != nil {
		return User{}, f.err
	}
	return f.user, nil
}

type ServiceSuite struct {
	suite.Suite
	users    *fakeUserStore
	lockout  *InMemoryLockoutStore
	sessions *testRevocationStore
	service  *Service
}

type testRevocationStore struct {
	revoked map[string]time.Time
}

func (s *testRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.revoked[jti] = expiresAt
	return nil
}

func (s *testRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := s.revoked[jti]
	return ok, nil
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	hash, err := secrets.Hash("admin123")
	s.Require().NoError(err)

	s.users = &fakeUserStore{user: User{ID: uuid.New(), Username: "admin", PasswordHash: hash}}
	s.lockout = NewInMemoryLockoutStore(DefaultLockoutPolicy())
	s.sessions = &testRevocationStore{revoked: make(map[string]time.Time)}
	s.service = NewService(s.users, s.lockout, s.sessions,
		token.NewService("test-key", time.Hour), nil, nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *ServiceSuite) TestVerifySucceeds() {
	principal, err := s.service.Verify(context.Background(), "admin", "admin123")
	s.NoError(err)
	s.Equal("admin", principal.Username)
}

func (s *ServiceSuite) TestVerifyUnknownIdentity() {
	s.users.err = dErrors.New(dErrors.CodeNotFound, "user not found")
	_, err := s.service.Verify(context.Background(), "ghost", "admin123")
	s.ErrorIs(err, ErrUnknownIdentity)
}

func (s *ServiceSuite) TestVerifyBadSecret() {
	_, err := s.service.Verify(context.Background(), "admin", "wrong")
	s.ErrorIs(err, ErrBadSecret)
}

// Repeated failures within the window lock the account; subsequent attempts
// are rejected before the hash comparison, even with the right secret.
func (s *ServiceSuite) TestLockoutAfterRepeatedFailures() {
	ctx := context.Background()
	for i := 0; i < DefaultLockoutPolicy().AttemptsPerWindow; i++ {
		_, err := s.service.Verify(ctx, "admin", "wrong")
		s.ErrorIs(err, ErrBadSecret)
	}

	_, err := s.service.Verify(ctx, "admin", "admin123")
	s.ErrorIs(err, ErrAccountLocked)
}

func (s *ServiceSuite) TestSuccessClearsAttemptMetadata() {
	ctx := context.Background()
	for i := 0; i < DefaultLockoutPolicy().AttemptsPerWindow-1; i++ {
		_, err := s.service.Verify(ctx, "admin", "wrong")
		s.ErrorIs(err, ErrBadSecret)
	}

	_, err := s.service.Verify(ctx, "admin", "admin123")
	s.NoError(err)

	// The window restarts: one more failure is not enough to lock.
	_, err = s.service.Verify(ctx, "admin", "wrong")
	s.ErrorIs(err, ErrBadSecret)
	_, err = s.service.Verify(ctx, "admin", "admin123")
	s.NoError(err)
}

func (s *ServiceSuite) TestLockExpiresAfterDuration() {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	for i := 0; i < DefaultLockoutPolicy().AttemptsPerWindow; i++ {
		_, err := s.service.Verify(ctx, "admin", "wrong")
		s.ErrorIs(err, ErrBadSecret)
	}
	_, err := s.service.Verify(ctx, "admin", "admin123")
	s.ErrorIs(err, ErrAccountLocked)

	later := requestcontext.WithTime(context.Background(), now.Add(DefaultLockoutPolicy().LockDuration+time.Minute))
	_, err = s.service.Verify(later, "admin", "admin123")
	s.NoError(err)
}

func (s *ServiceSuite) TestIssueAndRevokeSession() {
	ctx := context.Background()
	principal := Principal{ID: s.users.user.ID, Username: "admin"}

	result, err := s.service.IssueSession(ctx, principal)
	s.Require().NoError(err)
	s.NotEmpty(result.Token)
	s.True(result.ExpiresAt.After(time.Now()))

	claims, err := s.service.ValidateToken(result.Token)
	s.Require().NoError(err)
	s.Equal("admin", claims.Username)

	revoked, err := s.service.IsSessionRevoked(ctx, claims.ID)
	s.NoError(err)
	s.False(revoked)

	s.NoError(s.service.RevokeSession(ctx, claims.ID, result.ExpiresAt))
	revoked, err = s.service.IsSessionRevoked(ctx, claims.ID)
	s.NoError(err)
	s.True(revoked)
}

func TestTokenValidationRejectsTampering(t *testing.T) {
	svc := token.NewService("key-one", time.Hour)
	other := token.NewService("key-two", time.Hour)

	signed, _, _, err := svc.Generate(uuid.New(), "admin")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Validate(signed); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if _, err := other.Validate(signed); err == nil {
		t.Fatal("token signed with a different key was accepted")
	}
	if _, err := svc.Validate(signed + "x"); err == nil {
		t.Fatal("tampered token was accepted")
	}
}

func TestTokenValidationRejectsExpired(t *testing.T) {
	svc := token.NewService("key", -time.Minute)
	signed, _, _, err := svc.Generate(uuid.New(), "admin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Validate(signed); err == nil {
		t.Fatal("expired token was accepted")
	}
}
