//go:build integration

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"chainsync/internal/auth"
	"chainsync/internal/auth/store/user"
	"chainsync/internal/platform/postgres"
	dErrors "chainsync/pkg/domain-errors"
	"chainsync/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pool  *postgres.Pool
	store *user.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	pg := containers.NewPostgresContainer(s.T())

	pool, err := postgres.New(context.Background(), pg.DSN)
	s.Require().NoError(err)
	s.pool = pool

	_, err = pool.Exec(context.Background(), user.Schema)
	s.Require().NoError(err)

	s.store = user.NewPostgres(pool)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), "TRUNCATE users")
	s.Require().NoError(err)
}

func newUser(username string) auth.User {
	return auth.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$fakehashfortestingonly",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	u := newUser("admin")
	s.Require().NoError(s.store.Create(ctx, u))

	found, err := s.store.FindByUsername(ctx, "admin")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)
	s.Equal(u.PasswordHash, found.PasswordHash)

	// Lookup is case-insensitive.
	found, err = s.store.FindByUsername(ctx, "ADMIN")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)

	byID, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("admin", byID.Username)
}

func (s *PostgresStoreSuite) TestFindUnknownReturnsNotFound() {
	_, err := s.store.FindByUsername(context.Background(), "ghost")
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *PostgresStoreSuite) TestUpdatePasswordHash() {
	ctx := context.Background()
	u := newUser("admin")
	s.Require().NoError(s.store.Create(ctx, u))

	s.Require().NoError(s.store.UpdatePasswordHash(ctx, "admin", "$2a$10$replacementhash"))

	found, err := s.store.FindByUsername(ctx, "admin")
	s.Require().NoError(err)
	s.Equal("$2a$10$replacementhash", found.PasswordHash)
}

func (s *PostgresStoreSuite) TestUpdateUnknownUserFails() {
	err := s.store.UpdatePasswordHash(context.Background(), "ghost", "$2a$10$hash")
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}
