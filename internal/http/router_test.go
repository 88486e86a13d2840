package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"chainsync/internal/admin"
	"chainsync/internal/admission"
	"chainsync/internal/ai"
	"chainsync/internal/allowlist"
	"chainsync/internal/auth"
	authhandler "chainsync/internal/auth/handler"
	"chainsync/internal/auth/secrets"
	"chainsync/internal/auth/store/session"
	"chainsync/internal/auth/store/user"
	"chainsync/internal/auth/token"
	"chainsync/internal/featureflag"
	"chainsync/internal/platform/metrics"
	"chainsync/internal/settings"
	settingshandler "chainsync/internal/settings/handler"
	"chainsync/pkg/testutil"
)

const (
	allowedIP  = "10.0.0.7"
	outsiderIP = "203.0.113.5"
)

type RouterSuite struct {
	suite.Suite
	router http.Handler
	flags  *featureflag.Service
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewForTest()

	allowStore := allowlist.NewInMemoryStore()
	allowSvc := allowlist.NewService(allowStore, nil, nil, logger)
	allowSvc.Seed(ctx, []string{"10.0.0.0/8"}, "test")

	flagStore := featureflag.NewInMemoryStore()
	s.flags = featureflag.NewService(flagStore, nil, nil, m, logger)

	hash, err := secrets.Hash("admin123")
	s.Require().NoError(err)
	users := user.NewInMemoryStore()
	s.Require().NoError(users.Create(ctx, auth.User{
		ID:           uuid.New(),
		Username:     "admin",
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}))

	tokens := token.NewService("test-signing-key", time.Hour)
	authSvc := auth.NewService(users,
		auth.NewInMemoryLockoutStore(auth.DefaultLockoutPolicy()),
		session.NewInMemoryStore(), tokens, nil, m, logger)

	registry := admission.NewRegistry()
	gate := admission.NewGate(allowSvc, authSvc, s.flags, registry, nil, m, logger)

	settingsStore := settings.NewInMemoryStore()
	coordinator := settings.NewCoordinator(settingsStore, users, nil, m, logger)

	aiHandler := ai.NewHandler(ai.NewService(coordinator))
	s.Require().NoError(aiHandler.RegisterGated(registry))

	resolve := func(ctx context.Context, userID string) (string, error) {
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

	s.router = NewRouter(Deps{
		Gate:     gate,
		Auth:     authhandler.New(gate, authSvc, logger),
		Admin:    admin.New(s.flags, allowSvc, logger),
		Settings: settingshandler.New(coordinator, resolve, logger),
		Sessions: authSvc,
		Revoked:  authSvc,
		Logger:   logger,
	})
}

func (s *RouterSuite) login(origin string) string {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
		authhandler.LoginRequest{Username: "admin", Password: "admin123"})
	rec := testutil.DoRequest(s.router, withOrigin(req, origin))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	resp := testutil.UnmarshalResponse[authhandler.LoginResponse](s.T(), rec)
	s.Require().NotEmpty(resp.Token)
	return resp.Token
}

func withOrigin(req *http.Request, origin string) *http.Request {
	req.Header.Set("X-Forwarded-For", origin)
	return req
}

// A caller outside the allow-list is rejected even with valid credentials,
// and the response carries no hint that the credentials were correct.
func (s *RouterSuite) TestOutsiderWithValidCredentialsIsForbidden() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
		authhandler.LoginRequest{Username: "admin", Password: "admin123"})
	rec := testutil.DoRequest(s.router, withOrigin(req, outsiderIP))

	testutil.AssertStatus(s.T(), rec, http.StatusForbidden)
	testutil.AssertErrorCode(s.T(), rec, "forbidden")
}

func (s *RouterSuite) TestInsiderLogsIn() {
	s.login(allowedIP)
}

func (s *RouterSuite) TestBadCredentialsAreGeneric() {
	unknown := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
		authhandler.LoginRequest{Username: "ghost", Password: "admin123"})
	unknownRec := testutil.DoRequest(s.router, withOrigin(unknown, allowedIP))

	wrong := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
		authhandler.LoginRequest{Username: "admin", Password: "nope"})
	wrongRec := testutil.DoRequest(s.router, withOrigin(wrong, allowedIP))

	testutil.AssertStatus(s.T(), unknownRec, http.StatusUnauthorized)
	testutil.AssertStatus(s.T(), wrongRec, http.StatusUnauthorized)
	s.Equal(unknownRec.Body.String(), wrongRec.Body.String())
}

// Toggling the AI flag through the admin surface flips the gated routes
// from not-found to live on the very next request, and back.
func (s *RouterSuite) TestFlagFlipOpensAndClosesAISurface() {
	tok := s.login(allowedIP)

	for _, path := range []string{"/api/ai/chat", "/api/ai/insight-cards", "/api/ai/forecasting"} {
		rec := testutil.DoRequest(s.router, withOrigin(testutil.NewJSONRequest(s.T(), http.MethodGet, path, nil), allowedIP))
		testutil.AssertStatus(s.T(), rec, http.StatusNotFound)
		s.Contains(rec.Body.String(), "route not registered")
	}

	toggle := testutil.NewJSONRequest(s.T(), http.MethodPut, "/admin/configuration/flags/ai_enabled",
		admin.SetFlagRequest{Enabled: true})
	toggle.Header.Set("Authorization", "Bearer "+tok)
	testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, withOrigin(toggle, allowedIP)), http.StatusOK)

	for _, path := range []string{"/api/ai/chat", "/api/ai/insight-cards", "/api/ai/forecasting"} {
		rec := testutil.DoRequest(s.router, withOrigin(testutil.NewJSONRequest(s.T(), http.MethodGet, path, nil), allowedIP))
		testutil.AssertStatus(s.T(), rec, http.StatusOK)
		s.Contains(rec.Body.String(), "AI-generated")
	}

	toggleOff := testutil.NewJSONRequest(s.T(), http.MethodPut, "/admin/configuration/flags/ai_enabled",
		admin.SetFlagRequest{Enabled: false})
	toggleOff.Header.Set("Authorization", "Bearer "+tok)
	testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, withOrigin(toggleOff, allowedIP)), http.StatusOK)

	rec := testutil.DoRequest(s.router, withOrigin(testutil.NewJSONRequest(s.T(), http.MethodGet, "/api/ai/chat", nil), allowedIP))
	testutil.AssertStatus(s.T(), rec, http.StatusNotFound)
}

// A mixed settings submission reports per-domain outcomes: the valid
// profile is acknowledged while the mismatched password change fails, and
// neither blocks the other.
func (s *RouterSuite) TestSettingsDomainsReportIndependently() {
	tok := s.login(allowedIP)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/settings", settingshandler.SubmissionRequest{
		Profile: &settings.StoreProfile{StoreName: "Main Street Store", Email: "store@example.com"},
		Credential: &settings.CredentialChange{
			CurrentPassword: "admin123",
			NewPassword:     "s3cure-enough",
			ConfirmPassword: "mismatch",
		},
	})
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := testutil.DoRequest(s.router, withOrigin(req, allowedIP))
	testutil.AssertStatus(s.T(), rec, http.StatusOK)

	resp := testutil.UnmarshalResponse[settingshandler.ApplyResponse](s.T(), rec)
	s.Require().Len(resp.Results, 2)

	s.Equal("store_profile", resp.Results[0].Domain)
	s.Equal("ok", resp.Results[0].Status)
	s.Equal("Store settings saved successfully.", resp.Results[0].Message)

	s.Equal("credential", resp.Results[1].Domain)
	s.Equal("error", resp.Results[1].Status)
	s.Equal("invalid_input", resp.Results[1].Error)
}

func (s *RouterSuite) TestLogoutRevokesSession() {
	tok := s.login(allowedIP)

	logout := testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/logout", nil)
	logout.Header.Set("Authorization", "Bearer "+tok)
	testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, withOrigin(logout, allowedIP)), http.StatusOK)

	after := testutil.NewJSONRequest(s.T(), http.MethodGet, "/admin/configuration/", nil)
	after.Header.Set("Authorization", "Bearer "+tok)
	testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, withOrigin(after, allowedIP)), http.StatusUnauthorized)
}

func (s *RouterSuite) TestAdminSurfaceRequiresSession() {
	req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/admin/configuration/", nil)
	rec := testutil.DoRequest(s.router, withOrigin(req, allowedIP))
	testutil.AssertStatus(s.T(), rec, http.StatusUnauthorized)
}

func (s *RouterSuite) TestHealthzBypassesOriginCheck() {
	req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/healthz", nil)
	rec := testutil.DoRequest(s.router, withOrigin(req, outsiderIP))
	testutil.AssertStatus(s.T(), rec, http.StatusOK)
}

// An allow-list edit is visible to the very next request: the outsider is
// blocked, then admitted the moment its origin is added.
func (s *RouterSuite) TestAllowlistEditTakesEffectImmediately() {
	tok := s.login(allowedIP)

	blocked := testutil.DoRequest(s.router, withOrigin(testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
		authhandler.LoginRequest{Username: "admin", Password: "admin123"}), outsiderIP))
	testutil.AssertStatus(s.T(), blocked, http.StatusForbidden)

	add := testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/configuration/allowlist",
		admin.AddOriginRequest{Origin: outsiderIP, Reason: "branch office"})
	add.Header.Set("Authorization", "Bearer "+tok)
	testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, withOrigin(add, allowedIP)), http.StatusCreated)

	admitted := testutil.DoRequest(s.router, withOrigin(testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/login",
		authhandler.LoginRequest{Username: "admin", Password: "admin123"}), outsiderIP))
	testutil.AssertStatus(s.T(), admitted, http.StatusOK)
}
