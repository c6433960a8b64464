package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PGRepo implements Repo on admin_users and admin_sessions.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, username, role, password_hash, created_at, updated_at, last_login_at`

func (p *PGRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := p.DB.QueryRowContext(ctx, `SELECT count(*) FROM admin_users`).Scan(&n)
	return n, err
}

// bootstrapLockKey serializes first-user creation across connections.
const bootstrapLockKey int64 = 0x69736c61626f6f74

// CreateFirstUser inserts u only while admin_users is empty. The advisory
// lock makes concurrent bootstraps queue behind each other, and the insert
// runs after the lock so it sees any owner committed meanwhile.
func (p *PGRepo) CreateFirstUser(ctx context.Context, u User) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, bootstrapLockKey); err != nil {
		return err
	}
	const query = `
INSERT INTO admin_users (id, username, role, password_hash, created_at, updated_at)
SELECT $1, $2, $3, $4, $5, $6
WHERE NOT EXISTS (SELECT 1 FROM admin_users)`
	res, err := tx.ExecContext(ctx, query, u.ID, u.Username, u.Role, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBootstrapClosed
	}
	return tx.Commit()
}

func (p *PGRepo) CreateUser(ctx context.Context, u User) error {
	const query = `
INSERT INTO admin_users (id, username, role, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := p.DB.ExecContext(ctx, query, u.ID, u.Username, u.Role, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	return mapUniqueViolation(err)
}

func (p *PGRepo) GetUser(ctx context.Context, id string) (User, error) {
	return p.getUser(ctx, `SELECT `+userColumns+` FROM admin_users WHERE id = $1`, id)
}

func (p *PGRepo) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return p.getUser(ctx, `SELECT `+userColumns+` FROM admin_users WHERE username = $1`, username)
}

func (p *PGRepo) getUser(ctx context.Context, query, arg string) (User, error) {
	u, err := scanUser(p.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (p *PGRepo) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM admin_users ORDER BY created_at, username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (p *PGRepo) TouchLogin(ctx context.Context, id string, at time.Time) error {
	res, err := p.DB.ExecContext(ctx, `UPDATE admin_users SET last_login_at = $2, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PGRepo) CreateSession(ctx context.Context, s Session) error {
	const query = `
INSERT INTO admin_sessions (id, user_id, created_at, expires_at)
VALUES ($1, $2, $3, $4)`
	_, err := p.DB.ExecContext(ctx, query, s.ID, s.UserID, s.CreatedAt, s.ExpiresAt)
	return err
}

func (p *PGRepo) GetSession(ctx context.Context, id string) (Session, error) {
	var s Session
	err := p.DB.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at FROM admin_sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return s, err
}

func (p *PGRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := p.DB.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = $1`, id)
	return err
}

func (p *PGRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := p.DB.ExecContext(ctx, `DELETE FROM admin_sessions WHERE expires_at <= $1`, now)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		u         User
		lastLogin sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &lastLogin); err != nil {
		return User{}, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

var _ Repo = (*PGRepo)(nil)
