package builder

import "context"

// Repo persists one draft per owner.
type Repo interface {
	Get(ctx context.Context, ownerID string) (Draft, error)
	Save(ctx context.Context, draft Draft) error
}
