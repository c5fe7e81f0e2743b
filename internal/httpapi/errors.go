package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fundfinder-engine/internal/match"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	// Rate tiers and validation messages carry < and >.
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeFetchError maps store failures to a retryable 503 and logs the cause;
// the client never sees internal details.
func writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed",
		"request_id", RequestIDFrom(r.Context()),
		"path", r.URL.Path,
		"err", err,
	)
	if errors.Is(err, match.ErrRepositoryFetch) {
		WriteError(w, r, http.StatusServiceUnavailable, "repository_unavailable",
			"We couldn't load the directory right now. Please try again later.")
		return
	}
	WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
}
