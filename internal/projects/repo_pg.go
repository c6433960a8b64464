package projects

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

const projectColumns = `id, slug, project_name, owner, template, stack, target, features, files, preview_path, created_by, created_at`

func (r *PGRepo) Create(ctx context.Context, p Project) error {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return err
	}
	files, err := json.Marshal(p.Files)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO projects (` + projectColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.DB.ExecContext(ctx, query,
		p.ID,
		p.Slug,
		p.ProjectName,
		p.Owner,
		p.Template,
		p.Stack,
		p.Target,
		features,
		files,
		p.PreviewPath,
		nullString(p.CreatedBy),
		p.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

func (r *PGRepo) GetBySlug(ctx context.Context, slug string) (Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE slug = $1`
	p, err := scanProject(r.DB.QueryRowContext(ctx, query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	return p, err
}

func (r *PGRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *PGRepo) List(ctx context.Context, limit int) ([]Project, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, slug LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (Project, error) {
	var (
		p         Project
		features  []byte
		files     []byte
		createdBy sql.NullString
	)
	if err := row.Scan(
		&p.ID,
		&p.Slug,
		&p.ProjectName,
		&p.Owner,
		&p.Template,
		&p.Stack,
		&p.Target,
		&features,
		&files,
		&p.PreviewPath,
		&createdBy,
		&p.CreatedAt,
	); err != nil {
		return Project{}, err
	}
	if err := json.Unmarshal(features, &p.Features); err != nil {
		return Project{}, err
	}
	if err := json.Unmarshal(files, &p.Files); err != nil {
		return Project{}, err
	}
	p.CreatedBy = createdBy.String
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
