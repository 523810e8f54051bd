package repository

import (
	"context"
	"sync"

	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
)

var _ domain.StateStore = (*InMemoryStateStore)(nil)

// InMemoryStateStore is the fallback when no durable storage is configured.
type InMemoryStateStore struct {
	store map[string][]byte

	mu sync.RWMutex
}

func NewInMemoryStateStore() *InMemoryStateStore {
	return &InMemoryStateStore{
		store: make(map[string][]byte),
	}
}

func (r *InMemoryStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.store[key]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	return append([]byte(nil), data...), nil
}

func (r *InMemoryStateStore) Set(ctx context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[key] = append([]byte(nil), data...)
	return nil
}
