package httpapi

import "net/http"

// NewMux registers every route with its access tier. Session resolution and
// the other cross-cutting middleware are applied by NewHandler.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	page := RequireLogin(true)
	api := RequireLogin(false)
	// Admin routes answer 403 to guests and non-admins alike.
	admin := []Middleware{RequireAdmin}

	// Pages
	ph := PagesHandler{Log: d.Log}
	mux.HandleFunc("/login", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Login,
	}))
	mux.Handle("/{$}", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Dashboard,
	}), page))
	mux.Handle("/dashboard", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Dashboard,
	}), page))
	mux.Handle("/admin", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Admin,
	}), page))

	// Auth
	ah := AuthHandler{Auth: d.Auth, Log: d.Log}
	mux.Handle("/api/login", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Login,
	}), RateLimit(d.LoginLimiter)))
	mux.HandleFunc("/logout", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.Logout,
	}))

	// Records
	rh := RecordsHandler{DB: d.DB, Hub: d.Hub, Log: d.Log}
	mux.Handle("/collect", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Collect,
	}), RateLimit(d.CollectLimiter)))
	mux.HandleFunc("/find", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Find,
	}))
	mux.Handle("/api/all", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.All,
	}), api))

	xh := ExportHandler{DB: d.DB, Activity: d.Activity, Log: d.Log}
	mux.Handle("/export", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: xh.CSV,
	}), page))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.Handle("/events", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}), api))

	hh := HealthHandler{DB: d.DB, Log: d.Log}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Admin
	adm := AdminHandler{Auth: d.Auth, Activity: d.Activity, Log: d.Log}
	mux.Handle("/api/admin/users", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  adm.ListUsers,
		http.MethodPost: adm.CreateUser,
	}), admin...))
	mux.Handle("/api/admin/users/", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodDelete: adm.DeleteByPath, // expects /api/admin/users/{id}
	}), admin...))
	mux.Handle("/api/admin/logs", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: adm.Logs,
	}), admin...))

	ch := ConfigHandler{Cfg: d.Cfg}
	mux.Handle("/api/admin/config", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}), admin...))

	dh := DBHandler{DB: d.DB, Log: d.Log}
	mux.Handle("/api/admin/db/checkpoint", Chain(methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}), admin...))

	return mux
}

// NewHandler wraps the mux with request IDs, access logging, panic recovery,
// CORS and session resolution.
func NewHandler(d Deps) http.Handler {
	return Chain(NewMux(d),
		RequestID,
		AccessLog(d.Log),
		Recover(d.Log),
		Cors(d.Cfg.CORS.AllowedOrigins),
		WithSession(d.Auth.Sessions(), d.Log),
	)
}
