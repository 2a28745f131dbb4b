package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// ErrorResponse defines the standard error response structure.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// respondWithJSON writes data as JSON with the given status code.
func respondWithJSON(w http.ResponseWriter, logger zerolog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// respondWithError writes a JSON error body carrying the chi request id.
// 5xx responses are logged at error level, everything else at debug.
func respondWithError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, status int, message string) {
	requestID := middleware.GetReqID(r.Context())

	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Int("status_code", status).
		Str("request_id", requestID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(message)

	respondWithJSON(w, logger, status, ErrorResponse{Error: message, RequestID: requestID})
}
