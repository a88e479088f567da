package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"leadcollector-engine/internal/domain"
)

// APIError is the body of every JSON error response.
type APIError struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, status, APIError{
		Status:    "error",
		Message:   message,
		RequestID: RequestIDFrom(r.Context()),
	})
}

// writeErr maps a service error onto a status code and reports its message.
// Domain errors carry their own caller-facing text. Unclassified errors are
// storage failures: they are logged and answered 500 with the error text.
func writeErr(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			"request_id", RequestIDFrom(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
	}
	msg := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Msg
	}
	WriteError(w, r, status, msg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSelfDelete),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
