package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"leadcollector-engine/internal/activity"
	"leadcollector-engine/internal/auth"
	"leadcollector-engine/internal/domain"
)

// AdminHandler serves account management and the activity log. Routes are
// mounted behind RequireAdmin, so a session is always present.
type AdminHandler struct {
	Auth     *auth.Service
	Activity *activity.Logger
	Log      *slog.Logger
}

type createUserRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

func (h AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Auth.ListUsers(r.Context())
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": "success", "users": users})
}

func (h AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid JSON")
		return
	}

	id, err := h.Auth.CreateUser(r.Context(), SessionFrom(r.Context()), req.Email, req.Password, req.Role)
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": "success", "id": id})
}

// DeleteByPath expects /api/admin/users/{id}.
func (h AdminHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/admin/users/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.Auth.DeleteUser(r.Context(), *SessionFrom(r.Context()), id); err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

func (h AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Activity.Recent(r.Context())
	if err != nil {
		writeErr(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": "success", "logs": logs})
}
