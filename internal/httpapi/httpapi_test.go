package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	qt "github.com/frankban/quicktest"

	"leadcollector-engine/internal/activity"
	"leadcollector-engine/internal/auth"
	"leadcollector-engine/internal/config"
	"leadcollector-engine/internal/domain"
	"leadcollector-engine/internal/events"
	"leadcollector-engine/internal/logging"
	"leadcollector-engine/internal/store"
)

const (
	adminEmail = "admin@abs.com"
	adminPass  = "admin-secret"
	userEmail  = "user@abs.com"
	userPass   = "user-secret"
)

type server struct {
	c   *qt.C
	db  *store.DB
	hub *events.Hub
	h   http.Handler
}

func newServer(c *qt.C, mutate func(*Deps)) *server {
	c.Helper()
	ctx := context.Background()

	db, err := store.Open(filepath.Join(c.TempDir(), "api.db"))
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { _ = db.Close() })
	c.Assert(db.Migrate(ctx), qt.IsNil)

	log := logging.Discard()
	act := activity.New(db, log)
	cfg := config.Default()
	sessions := auth.NewSessionStore(time.Hour, auth.WithCookie(cfg.Session.CookieName, false))
	svc := auth.NewService(db, sessions, act, log)
	_, err = svc.Bootstrap(ctx, adminEmail, adminPass)
	c.Assert(err, qt.IsNil)
	_, err = svc.CreateUser(ctx, nil, userEmail, userPass, domain.RoleUser)
	c.Assert(err, qt.IsNil)

	d := Deps{
		DB:       db,
		Auth:     svc,
		Activity: act,
		Hub:      events.NewHub(),
		Log:      log,
		Cfg:      cfg,
	}
	if mutate != nil {
		mutate(&d)
	}
	return &server{c: c, db: db, hub: d.Hub, h: NewHandler(d)}
}

func (s *server) do(method, target string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	s.c.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.c.Assert(err, qt.IsNil)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	s.h.ServeHTTP(w, req)
	return w
}

func (s *server) login(email, password string) *http.Cookie {
	s.c.Helper()
	w := s.do(http.MethodPost, "/api/login", map[string]string{"email": email, "password": password})
	s.c.Assert(w.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", w.Body.String()))
	for _, ck := range w.Result().Cookies() {
		if ck.Name == config.Default().Session.CookieName {
			return ck
		}
	}
	s.c.Fatalf("login did not set a session cookie")
	return nil
}

func decode(c *qt.C, w *httptest.ResponseRecorder) map[string]any {
	c.Helper()
	var out map[string]any
	c.Assert(json.Unmarshal(w.Body.Bytes(), &out), qt.IsNil, qt.Commentf("body: %s", w.Body.String()))
	return out
}

func prospect(url string) map[string]any {
	return map[string]any{
		"url":          url,
		"firstName":    "Ada",
		"lastName":     "Lovelace",
		"jobTitle":     "Engineer",
		"companyName":  "Analytical Engines",
		"location":     "London",
		"email":        "Check Contact Info Section (Usually hidden)",
		"aboutSummary": "N/A",
		"timestamp":    "2024-05-01T10:00:00Z",
	}
}

func TestCollectAndFind(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)
	url := "https://www.linkedin.com/in/ada/"

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	w := s.do(http.MethodPost, "/collect", prospect(url))
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(decode(c, w)["message"], qt.Equals, "Prospect stored successfully")

	select {
	case msg := <-sub:
		var evt events.Notice
		c.Assert(json.Unmarshal([]byte(msg), &evt), qt.IsNil)
		c.Assert(evt.Type, qt.Equals, events.KindRecordStored)
	default:
		c.Fatalf("no record_stored event published")
	}

	w = s.do(http.MethodGet, "/find?url="+url, nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	body := decode(c, w)
	c.Assert(body["status"], qt.Equals, "found")
	data := body["data"].(map[string]any)
	c.Assert(data["firstName"], qt.Equals, "Ada")
	_, hasEmail := data["email"]
	c.Assert(hasEmail, qt.IsFalse)
	_, hasAbout := data["aboutSummary"]
	c.Assert(hasAbout, qt.IsFalse)

	w = s.do(http.MethodGet, "/find?url=https://www.linkedin.com/in/nobody/", nil)
	c.Assert(w.Code, qt.Equals, http.StatusNotFound)
	c.Assert(decode(c, w)["status"], qt.Equals, "not_found")

	w = s.do(http.MethodGet, "/find", nil)
	c.Assert(w.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode(c, w)["message"], qt.Equals, "URL parameter required")
}

func TestCollect_Rejects(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)

	w := s.do(http.MethodPost, "/collect", map[string]any{})
	c.Assert(w.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode(c, w)["message"], qt.Equals, "No data received")

	w = s.do(http.MethodPost, "/collect", map[string]any{"firstName": "Ada"})
	c.Assert(w.Code, qt.Equals, http.StatusBadRequest)
	body := decode(c, w)
	c.Assert(body["status"], qt.Equals, "error")
	c.Assert(body["message"], qt.Equals, "URL is missing")

	req := httptest.NewRequest(http.MethodPost, "/collect", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)

	w = s.do(http.MethodGet, "/collect", nil)
	c.Assert(w.Code, qt.Equals, http.StatusMethodNotAllowed)
}

func TestCollect_CompanyOverwrite(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)
	url := "https://www.linkedin.com/company/acme/"

	first := map[string]any{"url": url, "companyName": "Acme", "industry": "Retail"}
	w := s.do(http.MethodPost, "/collect", first)
	c.Assert(decode(c, w)["message"], qt.Equals, "Company stored successfully")

	second := map[string]any{"url": url, "companyName": "Acme Corp"}
	c.Assert(s.do(http.MethodPost, "/collect", second).Code, qt.Equals, http.StatusOK)

	n, err := s.db.CountRecords(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(1))

	data := decode(c, s.do(http.MethodGet, "/find?url="+url, nil))["data"].(map[string]any)
	c.Assert(data["companyName"], qt.Equals, "Acme Corp")
	_, hasIndustry := data["industry"]
	c.Assert(hasIndustry, qt.IsFalse)
}

func TestLogin_BadCredentials(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, func(d *Deps) { d.LoginLimiter = NewClientLimiter(1, 10) })

	for i := 0; i < 3; i++ {
		w := s.do(http.MethodPost, "/api/login", map[string]string{"email": adminEmail, "password": "wrong"})
		c.Assert(w.Code, qt.Equals, http.StatusUnauthorized)
		body := decode(c, w)
		c.Assert(body["status"], qt.Equals, "error")
		c.Assert(body["message"], qt.Equals, "Invalid email or password")
		c.Assert(w.Result().Cookies(), qt.HasLen, 0)
	}

	w := s.do(http.MethodPost, "/api/login", map[string]string{"email": "ghost@abs.com", "password": "x"})
	c.Assert(w.Code, qt.Equals, http.StatusUnauthorized)
}

func TestLogin_RateLimited(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, func(d *Deps) { d.LoginLimiter = NewClientLimiter(0.001, 2) })

	creds := map[string]string{"email": adminEmail, "password": "wrong"}
	c.Assert(s.do(http.MethodPost, "/api/login", creds).Code, qt.Equals, http.StatusUnauthorized)
	c.Assert(s.do(http.MethodPost, "/api/login", creds).Code, qt.Equals, http.StatusUnauthorized)
	c.Assert(s.do(http.MethodPost, "/api/login", creds).Code, qt.Equals, http.StatusTooManyRequests)
}

func TestLoginAndLogout(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)

	ck := s.login(userEmail, userPass)
	c.Assert(ck.HttpOnly, qt.IsTrue)

	w := s.do(http.MethodGet, "/login", nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusFound)
	c.Assert(w.Header().Get("Location"), qt.Equals, "/dashboard")

	w = s.do(http.MethodGet, "/dashboard", nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(w.Body.String(), qt.Contains, userEmail)

	w = s.do(http.MethodGet, "/logout", nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusFound)
	c.Assert(w.Header().Get("Location"), qt.Equals, "/login")
	cleared := w.Result().Cookies()
	c.Assert(cleared, qt.HasLen, 1)
	c.Assert(cleared[0].Name, qt.Equals, ck.Name)
	c.Assert(cleared[0].MaxAge < 0, qt.IsTrue)

	c.Assert(s.do(http.MethodGet, "/api/all", nil, ck).Code, qt.Equals, http.StatusUnauthorized)

	// Logout without a session is still a redirect.
	c.Assert(s.do(http.MethodGet, "/logout", nil).Code, qt.Equals, http.StatusFound)

	entries, err := s.db.RecentActivity(context.Background(), 0)
	c.Assert(err, qt.IsNil)
	c.Assert(entries[0].Action, qt.Equals, domain.ActionLogout)
	c.Assert(entries[0].Email, qt.Equals, domain.GuestEmail)
	c.Assert(entries[1].Action, qt.Equals, domain.ActionLogout)
	c.Assert(entries[1].Email, qt.Equals, userEmail)
}

func TestPages_RequireLogin(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)

	for _, path := range []string{"/", "/dashboard", "/admin", "/export"} {
		w := s.do(http.MethodGet, path, nil)
		c.Assert(w.Code, qt.Equals, http.StatusFound, qt.Commentf("path %s", path))
		c.Assert(w.Header().Get("Location"), qt.Equals, "/login")
	}

	w := s.do(http.MethodGet, "/login", nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(w.Header().Get("Content-Type"), qt.Equals, "text/html; charset=utf-8")

	ck := s.login(userEmail, userPass)
	w = s.do(http.MethodGet, "/admin", nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusFound)
	c.Assert(w.Header().Get("Location"), qt.Equals, "/dashboard")

	ck = s.login(adminEmail, adminPass)
	c.Assert(s.do(http.MethodGet, "/admin", nil, ck).Code, qt.Equals, http.StatusOK)
}

func TestDashboard_AdminLinkOnlyForAdmins(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)

	page := func(ck *http.Cookie) *goquery.Document {
		w := s.do(http.MethodGet, "/dashboard", nil, ck)
		c.Assert(w.Code, qt.Equals, http.StatusOK)
		doc, err := goquery.NewDocumentFromReader(w.Body)
		c.Assert(err, qt.IsNil)
		return doc
	}

	doc := page(s.login(userEmail, userPass))
	c.Assert(strings.TrimSpace(doc.Find("header span").Text()), qt.Equals, userEmail)
	c.Assert(doc.Find(`header a[href="/admin"]`).Length(), qt.Equals, 0)
	c.Assert(doc.Find(`header a[href="/logout"]`).Length(), qt.Equals, 1)
	for _, name := range []string{"type", "title", "company", "location", "industry", "domain", "size", "start_date", "end_date"} {
		c.Assert(doc.Find(`#filters [name="`+name+`"]`).Length(), qt.Equals, 1, qt.Commentf("filter %s", name))
	}

	doc = page(s.login(adminEmail, adminPass))
	c.Assert(doc.Find(`header a[href="/admin"]`).Length(), qt.Equals, 1)
}

func TestAPIAll(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)

	w := s.do(http.MethodGet, "/api/all", nil)
	c.Assert(w.Code, qt.Equals, http.StatusUnauthorized)
	c.Assert(decode(c, w)["status"], qt.Equals, "error")

	s.do(http.MethodPost, "/collect", prospect("https://www.linkedin.com/in/ada/"))
	s.do(http.MethodPost, "/collect", map[string]any{
		"url":         "https://www.linkedin.com/company/acme/",
		"companyName": "Acme",
		"timestamp":   "2024-06-01T10:00:00Z",
	})

	ck := s.login(userEmail, userPass)
	w = s.do(http.MethodGet, "/api/all", nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	data := decode(c, w)["data"].([]any)
	c.Assert(data, qt.HasLen, 2)
	c.Assert(data[0].(map[string]any)["type"], qt.Equals, "Company")

	w = s.do(http.MethodGet, "/api/all?type=Prospect", nil, ck)
	data = decode(c, w)["data"].([]any)
	c.Assert(data, qt.HasLen, 1)
	c.Assert(data[0].(map[string]any)["url"], qt.Equals, "https://www.linkedin.com/in/ada/")

	w = s.do(http.MethodGet, "/api/all?company=nothing-matches", nil, ck)
	c.Assert(decode(c, w)["data"], qt.DeepEquals, []any{})
}

func TestExport(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)
	s.do(http.MethodPost, "/collect", prospect("https://www.linkedin.com/in/ada/"))

	ck := s.login(userEmail, userPass)
	w := s.do(http.MethodGet, "/export?type=Prospect", nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(w.Header().Get("Content-Type"), qt.Equals, "text/csv")
	c.Assert(w.Header().Get("Content-Disposition"), qt.Equals, "attachment; filename=linkedin_extractions_filtered.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	c.Assert(lines, qt.HasLen, 2)
	c.Assert(strings.TrimSpace(lines[0]), qt.Equals, "Type,First Name,Last Name,Job Title,Company Name,Location,Industry,Domain,Employee Size,Headquarters,LinkedIn URL,Extraction Date")
	c.Assert(lines[1], qt.Contains, "Prospect,Ada,Lovelace")

	entries, err := s.db.RecentActivity(context.Background(), 0)
	c.Assert(err, qt.IsNil)
	c.Assert(entries[0].Action, qt.Equals, domain.ActionDownloadCSV)
	c.Assert(entries[0].Email, qt.Equals, userEmail)
	c.Assert(entries[0].Details, qt.Contains, `"type":"Prospect"`)
}

func TestAdmin_Forbidden(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/admin/users"},
		{http.MethodPost, "/api/admin/users"},
		{http.MethodDelete, "/api/admin/users/1"},
		{http.MethodGet, "/api/admin/logs"},
		{http.MethodGet, "/api/admin/config"},
		{http.MethodPost, "/api/admin/db/checkpoint"},
	}

	ck := s.login(userEmail, userPass)
	for _, who := range []struct {
		name    string
		cookies []*http.Cookie
	}{
		{"guest", nil},
		{"user", []*http.Cookie{ck}},
	} {
		for _, tc := range routes {
			w := s.do(tc.method, tc.path, nil, who.cookies...)
			c.Assert(w.Code, qt.Equals, http.StatusForbidden, qt.Commentf("%s %s %s", who.name, tc.method, tc.path))
			c.Assert(decode(c, w)["message"], qt.Equals, "Admin access required")
		}
	}
}

func TestAdmin_Users(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)
	ck := s.login(adminEmail, adminPass)

	w := s.do(http.MethodPost, "/api/admin/users", map[string]string{
		"email": "new@abs.com", "password": "pw", "role": "admin",
	}, ck)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	newID := int64(decode(c, w)["id"].(float64))

	w = s.do(http.MethodPost, "/api/admin/users", map[string]string{
		"email": "new@abs.com", "password": "pw",
	}, ck)
	c.Assert(w.Code, qt.Equals, http.StatusBadRequest)

	w = s.do(http.MethodPost, "/api/admin/users", map[string]string{"email": "x@abs.com"}, ck)
	c.Assert(w.Code, qt.Equals, http.StatusBadRequest)

	w = s.do(http.MethodPost, "/api/admin/users", map[string]string{
		"email": "long@abs.com", "password": strings.Repeat("x", 80),
	}, ck)
	c.Assert(w.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode(c, w)["message"], qt.Equals, "password must be at most 72 bytes")

	w = s.do(http.MethodGet, "/api/admin/users", nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	users := decode(c, w)["users"].([]any)
	c.Assert(users, qt.HasLen, 3)
	_, leaked := users[0].(map[string]any)["password"]
	c.Assert(leaked, qt.IsFalse)

	admin, err := s.db.FindUserByEmail(context.Background(), adminEmail)
	c.Assert(err, qt.IsNil)
	w = s.do(http.MethodDelete, "/api/admin/users/"+itoa(admin.ID), nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(decode(c, w)["message"], qt.Equals, "Cannot delete yourself")

	w = s.do(http.MethodDelete, "/api/admin/users/"+itoa(newID), nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusOK)

	w = s.do(http.MethodDelete, "/api/admin/users/abc", nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusBadRequest)

	w = s.do(http.MethodGet, "/api/admin/logs", nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	logs := decode(c, w)["logs"].([]any)
	c.Assert(logs[0].(map[string]any)["action"], qt.Equals, domain.ActionUserDeleted)
	c.Assert(logs[0].(map[string]any)["details"], qt.Equals, "Deleted user ID "+itoa(newID))
}

func TestAdmin_ConfigAndCheckpoint(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)
	ck := s.login(adminEmail, adminPass)

	w := s.do(http.MethodGet, "/api/admin/config", nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	body := decode(c, w)
	_, ok := body["validation"]
	c.Assert(ok, qt.IsTrue)
	adminCfg := body["config"].(map[string]any)["admin"].(map[string]any)
	c.Assert(adminCfg["email"], qt.Equals, config.DefaultAdminEmail)
	_, leaked := adminCfg["password"]
	c.Assert(leaked, qt.IsFalse)

	w = s.do(http.MethodPost, "/api/admin/db/checkpoint", nil, ck)
	c.Assert(w.Code, qt.Equals, http.StatusNoContent)
}

func TestHealth(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)
	s.do(http.MethodPost, "/collect", prospect("https://www.linkedin.com/in/ada/"))

	w := s.do(http.MethodGet, "/health", nil)
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	body := decode(c, w)
	c.Assert(body["ok"], qt.Equals, true)
	c.Assert(body["records"], qt.Equals, float64(1))
	c.Assert(w.Header().Get("X-Request-ID"), qt.Not(qt.Equals), "")
}

func TestCors(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, func(d *Deps) {
		d.Cfg.CORS.AllowedOrigins = []string{"chrome-extension://abc"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/collect", nil)
	req.Header.Set("Origin", "chrome-extension://abc")
	w := httptest.NewRecorder()
	s.h.ServeHTTP(w, req)
	c.Assert(w.Code, qt.Equals, http.StatusNoContent)
	c.Assert(w.Header().Get("Access-Control-Allow-Origin"), qt.Equals, "chrome-extension://abc")

	req = httptest.NewRequest(http.MethodOptions, "/collect", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	s.h.ServeHTTP(w, req)
	c.Assert(w.Header().Get("Access-Control-Allow-Origin"), qt.Equals, "")
}

func TestRecover(t *testing.T) {
	c := qt.New(t)
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestID, Recover(logging.Discard()))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	c.Assert(w.Code, qt.Equals, http.StatusInternalServerError)
	c.Assert(decode(c, w)["status"], qt.Equals, "error")
}

func TestEvents_StreamsRecordStored(t *testing.T) {
	c := qt.New(t)
	s := newServer(c, nil)
	ck := s.login(userEmail, userPass)

	c.Assert(s.do(http.MethodGet, "/events", nil).Code, qt.Equals, http.StatusUnauthorized)

	srv := httptest.NewServer(s.h)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/events", nil)
	c.Assert(err, qt.IsNil)
	req.AddCookie(ck)
	resp, err := srv.Client().Do(req)
	c.Assert(err, qt.IsNil)
	defer resp.Body.Close()
	c.Assert(resp.Header.Get("Content-Type"), qt.Equals, "text/event-stream")

	lines := bufio.NewScanner(resp.Body)
	next := func() events.Notice {
		for lines.Scan() {
			if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok {
				var evt events.Notice
				c.Assert(json.Unmarshal([]byte(data), &evt), qt.IsNil)
				return evt
			}
		}
		c.Fatalf("stream ended: %v", lines.Err())
		return events.Notice{}
	}

	c.Assert(next().Type, qt.Equals, events.KindPing)

	s.do(http.MethodPost, "/collect", prospect("https://www.linkedin.com/in/ada/"))
	c.Assert(next().Type, qt.Equals, events.KindRecordStored)
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
