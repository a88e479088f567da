package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"leadcollector-engine/internal/auth"
	"leadcollector-engine/internal/domain"
)

// SessionFrom returns the session attached by WithSession, or nil for a guest.
func SessionFrom(ctx context.Context) *domain.Session {
	if s, ok := ctx.Value(sessionKey).(domain.Session); ok {
		return &s
	}
	return nil
}

func withSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// WithSession loads the session named by the cookie, if any, and attaches it
// to the request context. Unknown or expired tokens leave the request anonymous.
// The response writer is passed through untouched so /events can still flush.
func WithSession(store *auth.SessionStore, log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(store.CookieName()); err == nil {
				token = c.Value
			}
			ctx, err := store.Load(r.Context(), token)
			if err != nil {
				log.Error("load session", "request_id", RequestIDFrom(r.Context()), "err", err)
				WriteError(w, r, http.StatusInternalServerError, "internal server error")
				return
			}
			if s, ok := store.Get(ctx); ok {
				s.Token = token
				ctx = withSession(ctx, s)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin rejects anonymous requests. Pages redirect to /login, APIs get a 401.
func RequireLogin(page bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SessionFrom(r.Context()) == nil {
				if page {
					http.Redirect(w, r, "/login", http.StatusFound)
					return
				}
				WriteError(w, r, http.StatusUnauthorized, "Login required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFrom(r.Context())
		if s == nil || !s.IsAdmin() {
			WriteError(w, r, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
