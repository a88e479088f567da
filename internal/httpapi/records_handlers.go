package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"leadcollector-engine/internal/domain"
	"leadcollector-engine/internal/events"
	"leadcollector-engine/internal/filter"
	"leadcollector-engine/internal/ingest"
	"leadcollector-engine/internal/store"
)

type RecordsHandler struct {
	DB  *store.DB
	Hub *events.Hub
	Log *slog.Logger
}

// Collect stores one extraction. A repeat of the same URL replaces the earlier row.
func (h RecordsHandler) Collect(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decodeJSON(w, r, &payload); err != nil {
		WriteError(w, r, http.StatusBadRequest, "No data received")
		return
	}

	rec, err := ingest.Normalize(payload)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	if err := h.DB.UpsertRecord(r.Context(), rec); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}

	h.Log.Info("record received",
		"request_id", RequestIDFrom(r.Context()),
		"type", rec.Type,
		"url", rec.URL,
		"name", strings.TrimSpace(rec.FirstName+" "+rec.LastName),
		"company", rec.CompanyName,
	)
	if h.Hub != nil {
		h.Hub.Announce(events.RecordStored(RequestIDFrom(r.Context()), rec))
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": string(rec.Type) + " stored successfully",
	})
}

func (h RecordsHandler) Find(w http.ResponseWriter, r *http.Request) {
	data, err := h.DB.FindRecord(r.Context(), r.URL.Query().Get("url"))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, map[string]any{
			"status":  "not_found",
			"message": "No data found for this URL",
		})
		return
	case err != nil:
		writeErr(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": "found", "data": data})
}

func (h RecordsHandler) All(w http.ResponseWriter, r *http.Request) {
	entries, err := h.DB.ListRecords(r.Context(), filter.Parse(r.URL.Query()))
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": "success", "data": entries})
}
