package auth

import (
	"context"
	"encoding/gob"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"leadcollector-engine/internal/domain"
)

const sessionDataKey = "session"

func init() {
	gob.Register(domain.Session{})
}

// SessionStore keeps logged-in sessions in process memory. Sessions do not
// survive a restart.
type SessionStore struct {
	manager *scs.SessionManager
}

type SessionOption func(*scs.SessionManager)

// WithCookie names the session cookie and marks it Secure when served over TLS.
func WithCookie(name string, secure bool) SessionOption {
	return func(m *scs.SessionManager) {
		if name != "" {
			m.Cookie.Name = name
		}
		m.Cookie.Secure = secure
	}
}

func NewSessionStore(ttl time.Duration, opts ...SessionOption) *SessionStore {
	m := scs.New()
	// Expired entries are dropped on lookup; no sweeper goroutine is started.
	m.Store = memstore.NewWithCleanupInterval(0)
	m.Lifetime = ttl
	m.Cookie.Path = "/"
	m.Cookie.HttpOnly = true
	m.Cookie.SameSite = http.SameSiteLaxMode
	for _, o := range opts {
		o(m)
	}
	return &SessionStore{manager: m}
}

func (s *SessionStore) CookieName() string { return s.manager.Cookie.Name }

// Load attaches the session data for token to ctx. Unknown or expired tokens
// yield an empty session, not an error.
func (s *SessionStore) Load(ctx context.Context, token string) (context.Context, error) {
	return s.manager.Load(ctx, token)
}

// Create issues a fresh token for u. ctx must come from Load.
func (s *SessionStore) Create(ctx context.Context, u domain.User) (domain.Session, error) {
	if err := s.manager.RenewToken(ctx); err != nil {
		return domain.Session{}, fmt.Errorf("renew session token: %w", err)
	}
	now := time.Now().UTC()
	sess := domain.Session{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.manager.Lifetime),
	}
	s.manager.Put(ctx, sessionDataKey, sess)

	token, expiry, err := s.manager.Commit(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("commit session: %w", err)
	}
	sess.Token, sess.ExpiresAt = token, expiry
	return sess, nil
}

// Get returns the session loaded into ctx. The stored copy carries no token.
func (s *SessionStore) Get(ctx context.Context) (domain.Session, bool) {
	sess, ok := s.manager.Get(ctx, sessionDataKey).(domain.Session)
	return sess, ok
}

func (s *SessionStore) Destroy(ctx context.Context) error {
	return s.manager.Destroy(ctx)
}

// WriteCookie sets the session cookie for sess on w.
func (s *SessionStore) WriteCookie(ctx context.Context, w http.ResponseWriter, sess domain.Session) {
	s.manager.WriteSessionCookie(ctx, w, sess.Token, sess.ExpiresAt)
}

// ClearCookie expires the session cookie in the browser.
func (s *SessionStore) ClearCookie(ctx context.Context, w http.ResponseWriter) {
	s.manager.WriteSessionCookie(ctx, w, "", time.Time{})
}
