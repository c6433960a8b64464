package providers

import (
	"context"
	"os"
	"strings"
)

// Resolver reads a provider setting from the process environment first and the
// settings store second.
type Resolver struct {
	Repo   SettingsRepo
	Getenv func(string) string
}

func NewResolver(repo SettingsRepo) *Resolver {
	return &Resolver{Repo: repo, Getenv: os.Getenv}
}

// Lookup returns the trimmed value for key, or "" when unset everywhere.
func (r *Resolver) Lookup(ctx context.Context, key string) (string, error) {
	env, err := r.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return env(key), nil
}

// Snapshot loads stored settings once and returns a lookup function over them.
func (r *Resolver) Snapshot(ctx context.Context) (func(string) string, error) {
	stored := map[string]string{}
	if r.Repo != nil {
		values, err := r.Repo.List(ctx)
		if err != nil {
			return nil, err
		}
		stored = values
	}
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return func(key string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(stored[key])
	}, nil
}
