package store

import (
	"context"
	"database/sql"
	"fmt"

	"leadcollector-engine/internal/domain"
)

// ActivityLimit caps the admin activity listing.
const ActivityLimit = 500

func (d *DB) InsertActivity(ctx context.Context, userID *int64, email, action, details string) error {
	var uid sql.NullInt64
	if userID != nil {
		uid = sql.NullInt64{Int64: *userID, Valid: true}
	}
	_, err := d.Pool.ExecContext(ctx,
		`INSERT INTO activity_logs (user_id, email, action, details) VALUES (?, ?, ?, ?);`,
		uid, email, action, details,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// RecentActivity returns at most limit entries, newest first.
func (d *DB) RecentActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 || limit > ActivityLimit {
		limit = ActivityLimit
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, user_id, email, action, details, timestamp
FROM activity_logs
ORDER BY timestamp DESC, id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	defer rows.Close()

	out := []domain.ActivityEntry{}
	for rows.Next() {
		var (
			e   domain.ActivityEntry
			uid sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &uid, &e.Email, &e.Action, &e.Details, &e.Timestamp); err != nil {
			return nil, err
		}
		if uid.Valid {
			v := uid.Int64
			e.UserID = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
