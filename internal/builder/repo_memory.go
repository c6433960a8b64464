package builder

import (
	"context"
	"sync"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{drafts: make(map[string]Draft)}
}

func (r *MemoryRepo) Get(ctx context.Context, ownerID string) (Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drafts[ownerID]
	if !ok {
		return Draft{}, ErrNotFound
	}
	d.Features = append([]string(nil), d.Features...)
	return d, nil
}

func (r *MemoryRepo) Save(ctx context.Context, draft Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	draft.Features = append([]string(nil), draft.Features...)
	r.drafts[draft.OwnerID] = draft
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
