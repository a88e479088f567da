package httpapi

import (
	"log/slog"
	"net/http"

	"leadcollector-engine/internal/store"
)

type DBHandler struct {
	DB  *store.DB
	Log *slog.Logger
}

// Checkpoint folds the WAL back into the main database file.
func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.Checkpoint(r.Context()); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
