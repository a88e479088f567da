package httpapi

import (
	"log/slog"

	"leadcollector-engine/internal/activity"
	"leadcollector-engine/internal/auth"
	"leadcollector-engine/internal/config"
	"leadcollector-engine/internal/events"
	"leadcollector-engine/internal/store"
)

type Deps struct {
	DB       *store.DB
	Auth     *auth.Service
	Activity *activity.Logger
	Hub      *events.Hub
	Log      *slog.Logger

	// Cfg is the startup configuration. It is read-only once the server runs.
	Cfg config.Config

	// Optional per-client limits; nil disables them.
	LoginLimiter   *ClientLimiter
	CollectLimiter *ClientLimiter
}
