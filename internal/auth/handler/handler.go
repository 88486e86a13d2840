package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"chainsync/internal/auth"
	"chainsync/internal/auth/token"
	dErrors "chainsync/pkg/domain-errors"
	"chainsync/pkg/platform/httputil"
	"chainsync/pkg/requestcontext"
)

// Admitter runs the full admission pipeline for a credential presentation.
// Origin rejection happens inside the pipeline, before the credentials are
// ever inspected.
type Admitter interface {
	VerifyCredentials(ctx context.Context, username, secret string) (auth.Principal, error)
}

// Sessions issues and revokes session tokens.
type Sessions interface {
	IssueSession(ctx context.Context, principal auth.Principal) (auth.LoginResult, error)
	RevokeSession(ctx context.Context, jti string, expiresAt time.Time) error
	ValidateToken(tokenString string) (*token.Claims, error)
}

// Handler wires the login and logout endpoints.
type Handler struct {
	gate     Admitter
	sessions Sessions
	logger   *slog.Logger
}

// New constructs the auth handler.
func New(gate Admitter, sessions Sessions, logger *slog.Logger) *Handler {
	return &Handler{gate: gate, sessions: sessions, logger: logger}
}

// Register mounts the auth endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/logout", h.HandleLogout)
}

// LoginRequest is the credential presentation payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := httputil.DecodeJSON[LoginRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "username and password are required"))
		return
	}

	principal, err := h.gate.VerifyCredentials(ctx, req.Username, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.sessions.IssueSession(ctx, principal)
	if err != nil {
		h.logger.ErrorContext(ctx, "session issuance failed",
			"request_id", requestID,
			"username", principal.Username,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		Username:  result.Principal.Username,
		ExpiresAt: result.ExpiresAt,
	})
}

// HandleLogout handles POST /auth/logout. The bearer token is validated here
// rather than by middleware: its expiry bounds the revocation record.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
		return
	}
	claims, err := h.sessions.ValidateToken(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.sessions.RevokeSession(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		h.logger.ErrorContext(ctx, "session revocation failed",
			"request_id", requestcontext.RequestID(ctx),
			"jti", claims.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "logout",
		"request_id", requestcontext.RequestID(ctx),
		"jti", claims.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
