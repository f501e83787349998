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
	records map[uuid.UUID]persistence.Patient
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: map[uuid.UUID]persistence.Patient{}}
}

func (m *MemoryRepository) Create(_ context.Context, scope tenant.Scope, params persistence.CreatePatientParams) (persistence.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	rec := persistence.Patient{
		ID:        uuid.New(),
		TenantID:  scope.TenantID,
		FirstName: strings.TrimSpace(params.FirstName),
		LastName:  strings.TrimSpace(params.LastName),
		Email:     params.Email,
		Phone:     params.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *MemoryRepository) Get(_ context.Context, scope tenant.Scope, id uuid.UUID) (persistence.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok || rec.TenantID != scope.TenantID {
		return persistence.Patient{}, persistence.ErrNotFound
	}
	return rec, nil
}

func (m *MemoryRepository) List(_ context.Context, scope tenant.Scope, query string) ([]persistence.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var out []persistence.Patient
	for _, rec := range m.records {
		if rec.TenantID != scope.TenantID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(rec.FirstName), q) {
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
