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
	records map[uuid.UUID]persistence.Appointment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: map[uuid.UUID]persistence.Appointment{}}
}

func (m *MemoryRepository) Create(_ context.Context, scope tenant.Scope, params persistence.CreateAppointmentParams) (persistence.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	rec := persistence.Appointment{
		ID:         uuid.New(),
		TenantID:   scope.TenantID,
		PatientID:  params.PatientID,
		ProviderID: params.ProviderID,
		StartAt:    params.StartAt,
		EndAt:      params.EndAt,
		Status:     params.Status,
		Reason:     params.Reason,
		Notes:      params.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *MemoryRepository) List(_ context.Context, scope tenant.Scope, patientID *uuid.UUID) ([]persistence.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []persistence.Appointment
	for _, rec := range m.records {
		if rec.TenantID != scope.TenantID {
			continue
		}
		if patientID != nil && rec.PatientID != *patientID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out, nil
}
