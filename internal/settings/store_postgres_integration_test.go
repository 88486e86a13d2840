//go:build integration

package settings_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chainsync/internal/platform/postgres"
	"chainsync/internal/settings"
	"chainsync/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pool  *postgres.Pool
	store *settings.PostgresStore
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

	_, err = pool.Exec(context.Background(), settings.Schema)
	s.Require().NoError(err)

	s.store = settings.NewPostgres(pool)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(),
		"TRUNCATE store_profile, notification_preferences, integration_config")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestEmptyDatabaseReturnsDefaults() {
	ctx := context.Background()

	profile, err := s.store.GetProfile(ctx)
	s.Require().NoError(err)
	s.Empty(profile.StoreName)

	prefs, err := s.store.GetNotifications(ctx)
	s.Require().NoError(err)
	s.False(prefs.LowStockAlerts)

	integrations, err := s.store.GetIntegrations(ctx)
	s.Require().NoError(err)
	s.False(integrations.PaymentGateway)
}

func (s *PostgresStoreSuite) TestProfileRoundTrip() {
	ctx := context.Background()
	saved := settings.StoreProfile{
		StoreName: "Main Street Store",
		Address:   "1 Main St",
		Phone:     "123-456-7890",
		Email:     "store@example.com",
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.SaveProfile(ctx, saved))

	got, err := s.store.GetProfile(ctx)
	s.Require().NoError(err)
	s.Equal(saved.StoreName, got.StoreName)
	s.Equal(saved.Email, got.Email)

	// Upsert replaces, not duplicates.
	saved.StoreName = "Renamed Store"
	s.Require().NoError(s.store.SaveProfile(ctx, saved))
	got, err = s.store.GetProfile(ctx)
	s.Require().NoError(err)
	s.Equal("Renamed Store", got.StoreName)
}

func (s *PostgresStoreSuite) TestNotificationsRoundTrip() {
	ctx := context.Background()
	saved := settings.NotificationPreferences{
		LowStockAlerts:    true,
		DailySalesSummary: true,
		UpdatedAt:         time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.SaveNotifications(ctx, saved))

	got, err := s.store.GetNotifications(ctx)
	s.Require().NoError(err)
	s.True(got.LowStockAlerts)
	s.True(got.DailySalesSummary)
	s.False(got.EmailNotifications)
}

func (s *PostgresStoreSuite) TestIntegrationsRoundTrip() {
	ctx := context.Background()
	saved := settings.IntegrationConfig{
		PaymentGateway: true,
		UpdatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.SaveIntegrations(ctx, saved))

	got, err := s.store.GetIntegrations(ctx)
	s.Require().NoError(err)
	s.True(got.PaymentGateway)
	s.False(got.AccountingSync)
}
