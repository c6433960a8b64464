package projects

import "context"

// Repo persists project records.
type Repo interface {
	Create(ctx context.Context, p Project) error
	GetBySlug(ctx context.Context, slug string) (Project, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// List returns projects newest first.
	List(ctx context.Context, limit int) ([]Project, error)
}
