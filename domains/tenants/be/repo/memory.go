package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/platform/go/persistence"
)

// MemoryRepository is an in-memory Repository used by tests.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]persistence.TenantRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: map[string]persistence.TenantRecord{}}
}

func (m *MemoryRepository) ListTenants(_ context.Context, limit int) ([]persistence.TenantRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]persistence.TenantRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) CreateTenant(_ context.Context, slug, name string) (persistence.TenantRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[slug]; exists {
		return persistence.TenantRecord{}, persistence.ErrConflict
	}

	now := time.Now()
	rec := persistence.TenantRecord{
		ID:        uuid.New(),
		Slug:      slug,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.records[slug] = rec
	return rec, nil
}
