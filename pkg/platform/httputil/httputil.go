// Package httputil centralizes JSON response envelopes so every handler
// speaks the same error dialect.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "chainsync/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for all error responses.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error to its HTTP envelope. Internal errors
// omit the description so storage failures never leak detail to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.GetCode(err)
	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		resp.ErrorDescription = dErrors.Description(err)
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}

// WriteNotFound writes the canonical not-found envelope. Unregistered routes
// and flag-closed routes both go through here so the two are
// indistinguishable to callers.
func WriteNotFound(w http.ResponseWriter) {
	WriteJSON(w, http.StatusNotFound, ErrorResponse{
		Error:            string(dErrors.CodeNotFound),
		ErrorDescription: "route not registered",
	})
}

// DecodeJSON decodes a request body into T, returning a coded error on
// malformed input.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return v, nil
}
