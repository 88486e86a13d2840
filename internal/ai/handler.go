package ai

import (
	"net/http"

	"chainsync/internal/admission"
	"chainsync/internal/featureflag"
	"chainsync/pkg/platform/httputil"
)

// Handler exposes the assistant endpoints as gated routes.
type Handler struct {
	service *Service
}

// NewHandler constructs the assistant handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterGated mounts the assistant routes on the admission registry,
// gated behind the AI flag. They resolve as not-found while the flag is
// closed.
func (h *Handler) RegisterGated(registry *admission.Registry) error {
	routes := map[string]http.HandlerFunc{
		"/api/ai/chat":          h.HandleChat,
		"/api/ai/insight-cards": h.HandleInsightCards,
		"/api/ai/forecasting":   h.HandleForecasting,
	}
	for pattern, handler := range routes {
		if err := registry.RegisterGated(pattern, handler, featureflag.FlagAI); err != nil {
			return err
		}
	}
	return nil
}

// ChatRequest is the optional chat prompt payload.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// HandleChat handles /api/ai/chat. GET returns the greeting; POST answers
// the submitted prompt.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var prompt string
	if r.Method == http.MethodPost {
		req, err := httputil.DecodeJSON[ChatRequest](r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		prompt = req.Prompt
	}

	reply, err := h.service.Chat(r.Context(), prompt)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reply)
}

// HandleInsightCards handles /api/ai/insight-cards.
func (h *Handler) HandleInsightCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.InsightCards(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

// HandleForecasting handles /api/ai/forecasting.
func (h *Handler) HandleForecasting(w http.ResponseWriter, r *http.Request) {
	forecast, err := h.service.Forecasting(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, forecast)
}
