// Package auth verifies credentials, issues sessions and manages accounts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"leadcollector-engine/internal/activity"
	"leadcollector-engine/internal/domain"
)

type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	InsertUser(ctx context.Context, email, passwordHash string, role domain.Role) (int64, error)
	EnsureUser(ctx context.Context, email, passwordHash string, role domain.Role) (bool, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

var errBadCredentials = domain.Errorf(domain.ErrUnauthorized, "Invalid email or password")

type Service struct {
	users    UserStore
	sessions *SessionStore
	activity *activity.Logger
	log      *slog.Logger
}

func NewService(users UserStore, sessions *SessionStore, act *activity.Logger, log *slog.Logger) *Service {
	return &Service{users: users, sessions: sessions, activity: act, log: log}
}

func (s *Service) Sessions() *SessionStore { return s.sessions }

// Login checks the credentials and issues a session carrying the user's
// current role. ctx must carry session data from SessionStore.Load.
func (s *Service) Login(ctx context.Context, email, password string) (domain.Session, error) {
	u, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, errBadCredentials
	}
	if err != nil {
		return domain.Session{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return domain.Session{}, errBadCredentials
	}

	sess, err := s.sessions.Create(ctx, u)
	if err != nil {
		return domain.Session{}, err
	}
	s.activity.Log(ctx, &sess, domain.ActionLogin, "")
	s.log.Info("login", "user_id", u.ID, "role", u.Role)
	return sess, nil
}

// Logout records the action under whatever identity sess carries and then
// drops the session. sess may be nil.
func (s *Service) Logout(ctx context.Context, sess *domain.Session) {
	s.activity.Log(ctx, sess, domain.ActionLogout, "")
	if sess == nil {
		return
	}
	if err := s.sessions.Destroy(ctx); err != nil {
		s.log.Warn("destroy session", "user_id", sess.UserID, "err", err)
	}
}

// CreateUser stores a new account. An empty role means "user".
// actor may be nil for operator commands run outside a session.
func (s *Service) CreateUser(ctx context.Context, actor *domain.Session, email, password string, role domain.Role) (int64, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return 0, domain.Invalid("email and password are required")
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return 0, domain.Invalid("invalid role %q", role)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.users.InsertUser(ctx, email, hash, role)
	if err != nil {
		return 0, err
	}

	s.activity.Log(ctx, actor, domain.ActionUserCreated, "Created account for "+email)
	return id, nil
}

// DeleteUser removes account id on behalf of actor. An actor cannot delete
// their own account.
func (s *Service) DeleteUser(ctx context.Context, actor domain.Session, id int64) error {
	if id == actor.UserID {
		return domain.ErrSelfDelete
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.activity.Log(ctx, &actor, domain.ActionUserDeleted, fmt.Sprintf("Deleted user ID %d", id))
	return nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

// Bootstrap creates the initial admin account when email is not taken yet.
// Running it again is a no-op.
func (s *Service) Bootstrap(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, domain.Invalid("bootstrap admin email and password are required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	created, err := s.users.EnsureUser(ctx, email, hash, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if created {
		s.log.Warn("bootstrap admin created; rotate its password before production use", "email", email)
	}
	return created, nil
}
