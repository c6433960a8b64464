package servicerequests

import "context"

// Repo persists service requests.
type Repo interface {
	// Create fails with ErrConflict when the id is taken.
	Create(ctx context.Context, r ServiceRequest) error
	Get(ctx context.Context, id string) (ServiceRequest, error)
	// List returns requests newest first.
	List(ctx context.Context, limit int) ([]ServiceRequest, error)
	// IDsWithPrefix returns the ids starting with prefix.
	IDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
	// Mutate loads id, applies fn and stores the result atomically. An error
	// from fn leaves the record unchanged.
	Mutate(ctx context.Context, id string, fn func(*ServiceRequest) error) (ServiceRequest, error)
}
