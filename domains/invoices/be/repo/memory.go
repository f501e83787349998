package repo

import (
	"context"
	"sort"
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
	records map[uuid.UUID]persistence.Invoice
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: map[uuid.UUID]persistence.Invoice{}}
}

func (m *MemoryRepository) Create(_ context.Context, scope tenant.Scope, params persistence.CreateInvoiceParams) (persistence.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	rec := persistence.Invoice{
		ID:        uuid.New(),
		TenantID:  scope.TenantID,
		PatientID: params.PatientID,
		Status:    params.Status,
		Currency:  params.Currency,
		Total:     params.Total,
		IssuedAt:  params.IssuedAt,
		DueAt:     params.DueAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *MemoryRepository) List(_ context.Context, scope tenant.Scope) ([]persistence.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []persistence.Invoice
	for _, rec := range m.records {
		if rec.TenantID != scope.TenantID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
