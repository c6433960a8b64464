package providers

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) List(ctx context.Context) (map[string]string, error) {
	return listSettings(ctx, r.DB)
}

// Apply writes the change in one transaction and returns the resulting settings.
func (r *PGRepo) Apply(ctx context.Context, change SettingsChange) (map[string]string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	keys := make([]string, 0, len(change.Set))
	for k := range change.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	const upsert = `
INSERT INTO provider_settings (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, upsert, k, change.Set[k]); err != nil {
			return nil, fmt.Errorf("upsert provider setting %s: %w", k, err)
		}
	}
	for _, k := range change.Remove {
		if _, err := tx.ExecContext(ctx, `DELETE FROM provider_settings WHERE key = $1`, k); err != nil {
			return nil, fmt.Errorf("delete provider setting %s: %w", k, err)
		}
	}

	values, err := listSettings(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return values, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listSettings(ctx context.Context, q queryer) (map[string]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT key, value FROM provider_settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if IsAllowedSetting(key) && value != "" {
			out[key] = value
		}
	}
	return out, rows.Err()
}

var _ SettingsRepo = (*PGRepo)(nil)
