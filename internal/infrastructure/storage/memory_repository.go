package storage

import (
	"context"
	"sync"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

// MemoryRepository keeps content for the lifetime of the process.
type MemoryRepository struct {
	mu      sync.RWMutex
	order   []string
	records map[string]domain.Content
}

var _ ports.ContentRepository = (*MemoryRepository)(nil)

// NewMemoryRepository builds an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: map[string]domain.Content{}}
}

// Get returns a copy of the record, or nil when absent.
func (r *MemoryRepository) Get(_ context.Context, id string) (*domain.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	out := content.Clone()
	return &out, nil
}

// List returns copies in insertion order.
func (r *MemoryRepository) List(_ context.Context) ([]domain.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Content, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.records[id].Clone())
	}
	return result, nil
}

// Save inserts or replaces the record.
func (r *MemoryRepository) Save(_ context.Context, content domain.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[content.ID]; !ok {
		r.order = append(r.order, content.ID)
	}
	r.records[content.ID] = content.Clone()
	return nil
}
