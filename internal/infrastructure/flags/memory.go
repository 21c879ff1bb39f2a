package flags

import (
	"context"
	"sync"

	"ContentPublisher/internal/ports"
)

// MemoryStore is a process-local feature-flag store.
type MemoryStore struct {
	mu    sync.RWMutex
	flags map[string]bool
}

var _ ports.FlagStore = (*MemoryStore)(nil)

// NewMemoryStore seeds the store with initial flag states.
func NewMemoryStore(initial map[string]bool) *MemoryStore {
	flags := make(map[string]bool, len(initial))
	for name, enabled := range initial {
		flags[name] = enabled
	}
	return &MemoryStore{flags: flags}
}

// UpdateFlag sets the flag state, creating the flag if needed.
func (s *MemoryStore) UpdateFlag(_ context.Context, name string, update ports.FlagUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[name] = update.Enabled
	return nil
}

// IsEnabled reports the flag state; unknown flags are disabled.
func (s *MemoryStore) IsEnabled(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[name], nil
}

// Snapshot copies all flag states.
func (s *MemoryStore) Snapshot() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(s.flags))
	for name, enabled := range s.flags {
		out[name] = enabled
	}
	return out
}
