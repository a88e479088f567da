package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"leadcollector-engine/internal/domain"
)

func (d *DB) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := d.Pool.QueryRowContext(ctx,
		`SELECT id, email, password, role, created_at FROM users WHERE email = ? LIMIT 1;`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

// InsertUser stores a new account. A taken email yields domain.ErrConflict.
func (d *DB) InsertUser(ctx context.Context, email, passwordHash string, role domain.Role) (int64, error) {
	res, err := d.Pool.ExecContext(ctx,
		`INSERT INTO users (email, password, role) VALUES (?, ?, ?);`,
		email, passwordHash, string(role),
	)
	if isUniqueViolation(err) {
		return 0, domain.Errorf(domain.ErrConflict, "user %s already exists", email)
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return res.LastInsertId()
}

// EnsureUser inserts the account only when the email is free.
func (d *DB) EnsureUser(ctx context.Context, email, passwordHash string, role domain.Role) (created bool, err error) {
	res, err := d.Pool.ExecContext(ctx, `
INSERT INTO users (email, password, role) VALUES (?, ?, ?)
ON CONFLICT(email) DO NOTHING;`,
		email, passwordHash, string(role),
	)
	if err != nil {
		return false, fmt.Errorf("ensure user: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteUser removes the account with id. Deleting an unknown id is a no-op;
// deleting the only admin is refused.
func (d *DB) DeleteUser(ctx context.Context, id int64) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var role string
	err = tx.QueryRowContext(ctx, `SELECT role FROM users WHERE id = ?;`, id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if domain.Role(role) == domain.RoleAdmin {
		var admins int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE role = ?;`, string(domain.RoleAdmin),
		).Scan(&admins); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if admins <= 1 {
			return domain.ErrLastAdmin
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return tx.Commit()
}

func (d *DB) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := d.Pool.QueryContext(ctx, `SELECT id, email, role, created_at FROM users ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		var (
			u    domain.User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Email, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = domain.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *DB) CountUsersByRole(ctx context.Context, role domain.Role) (int, error) {
	var n int
	err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = ?;`, string(role)).Scan(&n)
	return n, err
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
