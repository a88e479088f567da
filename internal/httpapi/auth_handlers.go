package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"leadcollector-engine/internal/auth"
)

type AuthHandler struct {
	Auth *auth.Service
	Log  *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid JSON")
		return
	}

	sess, err := h.Auth.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}

	h.Auth.Sessions().WriteCookie(r.Context(), w, sess)
	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"role":   sess.Role,
	})
}

// Logout always succeeds, even without a session, and returns the browser to /login.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Auth.Logout(r.Context(), SessionFrom(r.Context()))
	h.Auth.Sessions().ClearCookie(r.Context(), w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
