package servicerequests

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type MemoryRepo struct {
	mu       sync.Mutex
	requests map[string]ServiceRequest
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{requests: make(map[string]ServiceRequest)}
}

func (m *MemoryRepo) Create(ctx context.Context, r ServiceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.ID]; ok {
		return ErrConflict
	}
	m.requests[r.ID] = clone(r)
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return ServiceRequest{}, ErrNotFound
	}
	return clone(r), nil
}

func (m *MemoryRepo) List(ctx context.Context, limit int) ([]ServiceRequest, error) {
	m.mu.Lock()
	out := make([]ServiceRequest, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, clone(r))
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepo) IDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id := range m.requests {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *MemoryRepo) Mutate(ctx context.Context, id string, fn func(*ServiceRequest) error) (ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.requests[id]
	if !ok {
		return ServiceRequest{}, ErrNotFound
	}
	next := clone(current)
	if err := fn(&next); err != nil {
		return ServiceRequest{}, err
	}
	m.requests[id] = clone(next)
	return next, nil
}

func clone(r ServiceRequest) ServiceRequest {
	r.Items = append([]Item(nil), r.Items...)
	r.StatusHistory = append([]StatusEvent(nil), r.StatusHistory...)
	r.Provisioning = append([]ProvisionEntry(nil), r.Provisioning...)
	return r
}

var _ Repo = (*MemoryRepo)(nil)
