package httpapi

import (
	"bytes"
	"log/slog"
	"net/http"

	"leadcollector-engine/internal/activity"
	"leadcollector-engine/internal/domain"
	"leadcollector-engine/internal/export"
	"leadcollector-engine/internal/filter"
	"leadcollector-engine/internal/store"
)

type ExportHandler struct {
	DB       *store.DB
	Activity *activity.Logger
	Log      *slog.Logger
}

// CSV streams the filtered records as an attachment. The download is logged
// before the query runs, so failed exports still leave a trace.
func (h ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	f := filter.Parse(r.URL.Query())
	h.Activity.Log(r.Context(), SessionFrom(r.Context()), domain.ActionDownloadCSV, f.Describe())

	records, err := h.DB.QueryRecords(r.Context(), f)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", export.ContentDisposition())
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
