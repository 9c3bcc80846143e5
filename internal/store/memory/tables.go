package memory

import (
	"context"
	"sync"

	"github.com/example/tablebook/internal/domain/reservation"
)

type TableStore struct {
	mu     sync.RWMutex
	tables map[string][]reservation.Table
}

func NewTableStore() *TableStore {
	return &TableStore{tables: make(map[string][]reservation.Table)}
}

// Put replaces the tenant's tables.
func (s *TableStore) Put(tenant string, tables ...reservation.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]reservation.Table, len(tables))
	for i, t := range tables {
		t.TenantID = tenant
		cp[i] = t
	}
	s.tables[tenant] = cp
}

func (s *TableStore) ListTables(_ context.Context, tenant string) ([]reservation.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]reservation.Table{}, s.tables[tenant]...), nil
}
