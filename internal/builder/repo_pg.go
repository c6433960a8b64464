package builder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Get(ctx context.Context, ownerID string) (Draft, error) {
	const query = `
SELECT owner_id, project_name, owner, template, stack, target, features, prompt, updated_at
FROM builder_drafts
WHERE owner_id = $1`
	var (
		d        Draft
		features []byte
	)
	err := r.DB.QueryRowContext(ctx, query, ownerID).Scan(
		&d.OwnerID,
		&d.ProjectName,
		&d.Owner,
		&d.Template,
		&d.Stack,
		&d.Target,
		&features,
		&d.Prompt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Draft{}, ErrNotFound
		}
		return Draft{}, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &d.Features); err != nil {
			return Draft{}, err
		}
	}
	if d.Features == nil {
		d.Features = []string{}
	}
	return d, nil
}

// Save upserts the draft for its owner.
func (r *PGRepo) Save(ctx context.Context, draft Draft) error {
	features, err := json.Marshal(draft.Features)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO builder_drafts (
    owner_id, project_name, owner, template, stack, target, features, prompt, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (owner_id) DO UPDATE SET
    project_name = EXCLUDED.project_name,
    owner = EXCLUDED.owner,
    template = EXCLUDED.template,
    stack = EXCLUDED.stack,
    target = EXCLUDED.target,
    features = EXCLUDED.features,
    prompt = EXCLUDED.prompt,
    updated_at = EXCLUDED.updated_at`
	_, err = r.DB.ExecContext(ctx, query,
		draft.OwnerID,
		draft.ProjectName,
		draft.Owner,
		draft.Template,
		draft.Stack,
		draft.Target,
		features,
		draft.Prompt,
		draft.UpdatedAt,
	)
	return err
}

var _ Repo = (*PGRepo)(nil)
