package httpapi

import (
	"log/slog"
	"net/http"

	"leadcollector-engine/internal/store"
)

type HealthHandler struct {
	DB  *store.DB
	Log *slog.Logger
}

// Health reports liveness and the stored record count.
func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	n, err := h.DB.CountRecords(r.Context())
	if err != nil {
		h.Log.Error("health count", "err", err)
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "records": n})
}
