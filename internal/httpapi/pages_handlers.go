package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed web/*.html
var pagesFS embed.FS

var pages = template.Must(template.ParseFS(pagesFS, "web/*.html"))

type PagesHandler struct {
	Log *slog.Logger
}

type pageData struct {
	Email   string
	IsAdmin bool
}

func (h PagesHandler) Login(w http.ResponseWriter, r *http.Request) {
	if SessionFrom(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render(w, r, "login.html", pageData{})
}

func (h PagesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s := SessionFrom(r.Context())
	h.render(w, r, "dashboard.html", pageData{Email: s.Email, IsAdmin: s.IsAdmin()})
}

func (h PagesHandler) Admin(w http.ResponseWriter, r *http.Request) {
	s := SessionFrom(r.Context())
	if !s.IsAdmin() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render(w, r, "admin.html", pageData{Email: s.Email, IsAdmin: true})
}

func (h PagesHandler) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.Log.Error("render page", "page", name, "err", err)
		WriteError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
