package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chainsync/internal/settings"
	dErrors "chainsync/pkg/domain-errors"
	"chainsync/pkg/platform/httputil"
	"chainsync/pkg/requestcontext"
)

// Coordinator applies settings submissions and serves the current view.
type Coordinator interface {
	Apply(ctx context.Context, username string, sub settings.Submission) []settings.Outcome
	Get(ctx context.Context) (settings.View, error)
}

// UsernameResolver maps the authenticated principal ID to its handle, which
// the credential domain needs for the current-password check.
type UsernameResolver func(ctx context.Context, userID string) (string, error)

// Handler wires the settings endpoints. All routes sit behind RequireAuth.
type Handler struct {
	coordinator Coordinator
	resolve     UsernameResolver
	logger      *slog.Logger
}

// New constructs the settings handler.
func New(coordinator Coordinator, resolve UsernameResolver, logger *slog.Logger) *Handler {
	return &Handler{coordinator: coordinator, resolve: resolve, logger: logger}
}

// Register mounts the settings endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/settings", h.HandleGet)
	r.Post("/settings", h.HandleApply)
}

// SubmissionRequest carries the settings forms present in one request.
// Omitted domains are not applied.
type SubmissionRequest struct {
	Profile       *settings.StoreProfile            `json:"store_profile,omitempty"`
	Credential    *settings.CredentialChange        `json:"credential,omitempty"`
	Notifications *settings.NotificationPreferences `json:"notifications,omitempty"`
	Integrations  *settings.IntegrationConfig       `json:"integrations,omitempty"`
}

// DomainResult is one domain's caller-visible outcome.
type DomainResult struct {
	Domain  string `json:"domain"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Detail  string `json:"error_description,omitempty"`
}

// ApplyResponse lists per-domain results. The HTTP status is 200 whenever
// the submission itself was well-formed; individual domain failures are in
// the results, never a request-level error.
type ApplyResponse struct {
	Results []DomainResult `json:"results"`
}

// HandleGet handles GET /settings.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.coordinator.Get(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleApply handles POST /settings.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.DecodeJSON[SubmissionRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sub := settings.Submission{
		Profile:       req.Profile,
		Credential:    req.Credential,
		Notifications: req.Notifications,
		Integrations:  req.Integrations,
	}
	if sub.Profile == nil && sub.Credential == nil && sub.Notifications == nil && sub.Integrations == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "no settings domain submitted"))
		return
	}

	username, err := h.resolve(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "resolving principal failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not resolve principal"))
		return
	}

	outcomes := h.coordinator.Apply(ctx, username, sub)

	resp := ApplyResponse{Results: make([]DomainResult, 0, len(outcomes))}
	for _, o := range outcomes {
		result := DomainResult{Domain: string(o.Domain)}
		if o.Succeeded() {
			result.Status = "ok"
			result.Message = o.Ack
		} else {
			result.Status = "error"
			result.Error = string(dErrors.GetCode(o.Err))
			result.Detail = dErrors.Description(o.Err)
		}
		resp.Results = append(resp.Results, result)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
