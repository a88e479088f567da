// Package activity records the audit trail of user actions.
package activity

import (
	"context"
	"log/slog"

	"leadcollector-engine/internal/domain"
	"leadcollector-engine/internal/store"
)

type Store interface {
	InsertActivity(ctx context.Context, userID *int64, email, action, details string) error
	RecentActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
}

type Logger struct {
	store Store
	log   *slog.Logger
}

func New(store Store, log *slog.Logger) *Logger {
	return &Logger{store: store, log: log}
}

// Log appends one entry for sess (nil means Guest). Failures are reported on
// the operator log and never reach the caller.
func (l *Logger) Log(ctx context.Context, sess *domain.Session, action, details string) {
	var (
		userID *int64
		email  = domain.GuestEmail
	)
	if sess != nil {
		id := sess.UserID
		userID = &id
		email = sess.Email
	}

	defer func() {
		if rec := recover(); rec != nil {
			l.log.Error("activity log panic", "action", action, "err", rec)
		}
	}()
	if err := l.store.InsertActivity(ctx, userID, email, action, details); err != nil {
		l.log.Error("activity log write failed", "action", action, "email", email, "err", err)
	}
}

// Recent returns the newest entries, up to store.ActivityLimit.
func (l *Logger) Recent(ctx context.Context) ([]domain.ActivityEntry, error) {
	return l.store.RecentActivity(ctx, store.ActivityLimit)
}
