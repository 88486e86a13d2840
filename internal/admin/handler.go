// Package admin is the operator configuration surface: feature flags and
// the origin allow-list. Everything here requires an authenticated session;
// changes made here are visible to the very next admitted request.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"chainsync/internal/allowlist"
	"chainsync/internal/featureflag"
	dErrors "chainsync/pkg/domain-errors"
	"chainsync/pkg/platform/httputil"
	"chainsync/pkg/requestcontext"
)

// FlagService administers feature flags.
type FlagService interface {
	List(ctx context.Context) ([]featureflag.Flag, error)
	Set(ctx context.Context, name string, enabled bool) (featureflag.Flag, error)
}

// AllowlistService administers the origin allow-list.
type AllowlistService interface {
	List(ctx context.Context) ([]*allowlist.Entry, error)
	Add(ctx context.Context, origin, reason string) (*allowlist.Entry, error)
	Remove(ctx context.Context, origin string) error
}

// Handler wires the /admin/configuration endpoints.
type Handler struct {
	flags     FlagService
	allowlist AllowlistService
	logger    *slog.Logger
}

// New constructs the admin handler.
func New(flags FlagService, allowlist AllowlistService, logger *slog.Logger) *Handler {
	return &Handler{flags: flags, allowlist: allowlist, logger: logger}
}

// Register mounts the configuration endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin/configuration", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Put("/flags/{name}", h.HandleSetFlag)
		r.Post("/allowlist", h.HandleAddOrigin)
		r.Delete("/allowlist", h.HandleRemoveOrigin)
	})
}

// FlagView is one flag in the configuration view.
type FlagView struct {
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// OriginView is one allow-list entry in the configuration view.
type OriginView struct {
	Origin    string    `json:"origin"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// ConfigurationView is the full admin configuration payload.
type ConfigurationView struct {
	Flags     []FlagView   `json:"feature_flags"`
	Allowlist []OriginView `json:"ip_allowlist"`
}

// HandleGet handles GET /admin/configuration.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flags, err := h.flags.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.allowlist.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view := ConfigurationView{
		Flags:     make([]FlagView, 0, len(flags)),
		Allowlist: make([]OriginView, 0, len(entries)),
	}
	for _, f := range flags {
		view.Flags = append(view.Flags, FlagView{
			Name:      f.Name,
			Enabled:   f.Enabled,
			UpdatedAt: f.UpdatedAt,
			UpdatedBy: f.UpdatedBy,
		})
	}
	for _, e := range entries {
		view.Allowlist = append(view.Allowlist, OriginView{
			Origin:    e.Origin,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
			CreatedBy: e.CreatedBy,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// SetFlagRequest is the flag toggle payload.
type SetFlagRequest struct {
	Enabled bool `json:"enabled"`
}

// HandleSetFlag handles PUT /admin/configuration/flags/{name}.
func (h *Handler) HandleSetFlag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	req, err := httputil.DecodeJSON[SetFlagRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	flag, err := h.flags.Set(ctx, name, req.Enabled)
	if err != nil {
		h.logger.ErrorContext(ctx, "flag toggle failed",
			"request_id", requestcontext.RequestID(ctx),
			"flag", name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FlagView{
		Name:      flag.Name,
		Enabled:   flag.Enabled,
		UpdatedAt: flag.UpdatedAt,
		UpdatedBy: flag.UpdatedBy,
	})
}

// AddOriginRequest is the allow-list addition payload.
type AddOriginRequest struct {
	Origin string `json:"origin"`
	Reason string `json:"reason"`
}

// HandleAddOrigin handles POST /admin/configuration/allowlist.
func (h *Handler) HandleAddOrigin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.DecodeJSON[AddOriginRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Origin == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "origin is required"))
		return
	}

	entry, err := h.allowlist.Add(ctx, req.Origin, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, OriginView{
		Origin:    entry.Origin,
		Reason:    entry.Reason,
		CreatedAt: entry.CreatedAt,
		CreatedBy: entry.CreatedBy,
	})
}

// RemoveOriginRequest is the allow-list removal payload.
type RemoveOriginRequest struct {
	Origin string `json:"origin"`
}

// HandleRemoveOrigin handles DELETE /admin/configuration/allowlist.
func (h *Handler) HandleRemoveOrigin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.DecodeJSON[RemoveOriginRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Origin == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "origin is required"))
		return
	}

	if err := h.allowlist.Remove(ctx, req.Origin); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
