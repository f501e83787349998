package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/platform/go/persistence"
	"github.com/odontox-io/odontox/platform/go/tenant"
)

// Repository defines the persistence operations required by the appointments
// service. Every call is bound to the caller's tenant scope.
type Repository interface {
	Create(ctx context.Context, scope tenant.Scope, params persistence.CreateAppointmentParams) (persistence.Appointment, error)
	List(ctx context.Context, scope tenant.Scope, patientID *uuid.UUID) ([]persistence.Appointment, error)
}

type postgresRepository struct {
	appointments *persistence.AppointmentStore
}

// NewPostgresRepository constructs a repository backed by the shared appointment store.
func NewPostgresRepository(appointments *persistence.AppointmentStore) Repository {
	if appointments == nil {
		panic("appointment store is required")
	}
	return &postgresRepository{appointments: appointments}
}

func (r *postgresRepository) Create(ctx context.Context, scope tenant.Scope, params persistence.CreateAppointmentParams) (persistence.Appointment, error) {
	return r.appointments.CreateAppointment(ctx, scope, params)
}

func (r *postgresRepository) List(ctx context.Context, scope tenant.Scope, patientID *uuid.UUID) ([]persistence.Appointment, error) {
	return r.appointments.ListAppointments(ctx, scope, patientID)
}
