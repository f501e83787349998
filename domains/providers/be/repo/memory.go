package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/platform/go/persistence"
	"github.com/odontox-io/odontox/platform/go/tenant"
)

// MemoryRepository is an in-memory Repository used by tests. It enforces the
// same visibility rule as the database policies: rows of other tenants do not
// exist as far as the caller can tell.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]persistence.Provider
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: map[uuid.UUID]persistence.Provider{}}
}

func (m *MemoryRepository) Create(_ context.Context, scope tenant.Scope, params persistence.CreateProviderParams) (persistence.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	rec := persistence.Provider{
		ID:             uuid.New(),
		TenantID:       scope.TenantID,
		FirstName:      strings.TrimSpace(params.FirstName),
		LastName:       strings.TrimSpace(params.LastName),
		Email:          params.Email,
		LicenseNumber:  params.LicenseNumber,
		Specialization: params.Specialization,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *MemoryRepository) List(_ context.Context, scope tenant.Scope) ([]persistence.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []persistence.Provider
	for _, rec := range m.records {
		if rec.TenantID != scope.TenantID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}
