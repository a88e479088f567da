package httpapi

import (
	"net/http"

	"leadcollector-engine/internal/config"
)

type ConfigHandler struct {
	Cfg config.Config
}

// Get returns the running configuration and its validation report. The
// bootstrap admin password is never serialized.
func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.Cfg)
	WriteJSON(w, http.StatusOK, map[string]any{
		"config":     h.Cfg,
		"validation": vr,
	})
}
