package providers

import (
	"context"
	"sync"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{values: make(map[string]string)}
}

func (r *MemoryRepo) List(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyValues(r.values), nil
}

func (r *MemoryRepo) Apply(ctx context.Context, change SettingsChange) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range change.Set {
		r.values[k] = v
	}
	for _, k := range change.Remove {
		delete(r.values, k)
	}
	return copyValues(r.values), nil
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var _ SettingsRepo = (*MemoryRepo)(nil)
