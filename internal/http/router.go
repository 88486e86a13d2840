// Package httptransport assembles the HTTP surface. The middleware order is
// part of the admission contract: client metadata must be extracted before
// the origin check runs, and the origin check runs before any route that
// could disclose identity or feature information.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chainsync/internal/admin"
	"chainsync/internal/admission"
	"chainsync/internal/auth"
	authhandler "chainsync/internal/auth/handler"
	settingshandler "chainsync/internal/settings/handler"
	"chainsync/pkg/platform/httputil"
	"chainsync/pkg/platform/middleware"
)

// Deps are the wired components the router mounts.
type Deps struct {
	Gate     *admission.Gate
	Auth     *authhandler.Handler
	Admin    *admin.Handler
	Settings *settingshandler.Handler
	Sessions auth.TokenValidator
	Revoked  auth.RevocationChecker
	Logger   *slog.Logger
}

// NewRouter builds the full route tree.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(d.Logger))

	// Operational endpoints sit outside origin enforcement so probes and
	// scrapers work from the cluster network.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Everything else passes the admission pipeline, starting with the
	// origin check.
	r.Group(func(r chi.Router) {
		r.Use(d.Gate.OriginMiddleware())

		d.Auth.Register(r)

		// The flag-gated surface resolves per request against a fresh flag
		// snapshot. Closed and unregistered routes are indistinguishable.
		r.Handle("/api/ai/*", d.Gate.GatedHandler())

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(d.Sessions, d.Revoked, d.Logger))
			d.Admin.Register(r)
			d.Settings.Register(r)
		})
	})

	return r
}
