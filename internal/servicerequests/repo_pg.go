package servicerequests

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const requestColumns = `id, created_at, updated_at, customer_name, email, company, project_name, notes, items,
total_monthly, total_yearly, total, currency, status, history, provisioning`

func (p *PGRepo) Create(ctx context.Context, r ServiceRequest) error {
	items, history, provisioning, err := encodeJSONColumns(r)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO service_requests (` + requestColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = p.DB.ExecContext(ctx, query,
		r.ID,
		r.CreatedAt,
		r.UpdatedAt,
		r.CustomerName,
		r.Email,
		nullString(r.Company),
		r.ProjectName,
		r.Notes,
		items,
		r.TotalMonthly,
		r.TotalYearly,
		r.Total,
		r.Currency,
		string(r.Status),
		history,
		provisioning,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

func (p *PGRepo) Get(ctx context.Context, id string) (ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id = $1`
	r, err := scanRequest(p.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return ServiceRequest{}, ErrNotFound
	}
	return r, err
}

func (p *PGRepo) List(ctx context.Context, limit int) ([]ServiceRequest, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	query := `SELECT ` + requestColumns + ` FROM service_requests ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := p.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ServiceRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PGRepo) IDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT id FROM service_requests WHERE starts_with(id, $1)`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Mutate locks the row for the duration of fn.
func (p *PGRepo) Mutate(ctx context.Context, id string, fn func(*ServiceRequest) error) (ServiceRequest, error) {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return ServiceRequest{}, err
	}
	defer tx.Rollback()

	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id = $1 FOR UPDATE`
	r, err := scanRequest(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ServiceRequest{}, ErrNotFound
		}
		return ServiceRequest{}, err
	}
	if err := fn(&r); err != nil {
		return ServiceRequest{}, err
	}

	_, history, provisioning, err := encodeJSONColumns(r)
	if err != nil {
		return ServiceRequest{}, err
	}
	const update = `
UPDATE service_requests
SET status = $2, history = $3, provisioning = $4, updated_at = $5
WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, r.ID, string(r.Status), history, provisioning, r.UpdatedAt); err != nil {
		return ServiceRequest{}, err
	}
	if err := tx.Commit(); err != nil {
		return ServiceRequest{}, err
	}
	return r, nil
}

func encodeJSONColumns(r ServiceRequest) (items, history, provisioning []byte, err error) {
	if items, err = json.Marshal(nonNil(r.Items)); err != nil {
		return nil, nil, nil, err
	}
	if history, err = json.Marshal(nonNil(r.StatusHistory)); err != nil {
		return nil, nil, nil, err
	}
	if provisioning, err = json.Marshal(nonNil(r.Provisioning)); err != nil {
		return nil, nil, nil, err
	}
	return items, history, provisioning, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (ServiceRequest, error) {
	var (
		r                            ServiceRequest
		company, notes               sql.NullString
		status                       string
		items, history, provisioning []byte
	)
	if err := row.Scan(
		&r.ID,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.CustomerName,
		&r.Email,
		&company,
		&r.ProjectName,
		&notes,
		&items,
		&r.TotalMonthly,
		&r.TotalYearly,
		&r.Total,
		&r.Currency,
		&status,
		&history,
		&provisioning,
	); err != nil {
		return ServiceRequest{}, err
	}
	r.Company = company.String
	r.Notes = notes.String
	r.Status = Status(status)
	for _, col := range []struct {
		raw []byte
		dst any
	}{
		{items, &r.Items},
		{history, &r.StatusHistory},
		{provisioning, &r.Provisioning},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return ServiceRequest{}, err
		}
	}
	return r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
