package memory

import (
	"context"
	"sync"

	"github.com/example/tablebook/internal/capacity"
)

type CapacityStore struct {
	mu   sync.RWMutex
	data map[string]capacity.Overrides
}

func NewCapacityStore() *CapacityStore {
	return &CapacityStore{data: make(map[string]capacity.Overrides)}
}

func (s *CapacityStore) LoadOverrides(_ context.Context, tenant string) (capacity.Overrides, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[tenant], nil
}

func (s *CapacityStore) SaveOverrides(_ context.Context, tenant string, o capacity.Overrides) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[tenant] = o
	return nil
}
