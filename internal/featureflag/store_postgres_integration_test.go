//go:build integration

package featureflag_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chainsync/internal/featureflag"
	"chainsync/internal/platform/postgres"
	"chainsync/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pool  *postgres.Pool
	store *featureflag.PostgresStore
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

	_, err = pool.Exec(context.Background(), featureflag.Schema)
	s.Require().NoError(err)

	s.store = featureflag.NewPostgres(pool)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), "TRUNCATE feature_flags")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestUpsertAndList() {
	ctx := context.Background()
	flag := featureflag.Flag{
		Name:      featureflag.FlagAI,
		Enabled:   true,
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedBy: "admin",
	}
	s.Require().NoError(s.store.Upsert(ctx, flag))

	flags, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(flags, 1)
	s.True(flags[0].Enabled)
	s.Equal("admin", flags[0].UpdatedBy)

	// A second upsert overwrites, keeping one row per flag.
	flag.Enabled = false
	flag.UpdatedBy = "ops"
	s.Require().NoError(s.store.Upsert(ctx, flag))

	flags, err = s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(flags, 1)
	s.False(flags[0].Enabled)
	s.Equal("ops", flags[0].UpdatedBy)
}
