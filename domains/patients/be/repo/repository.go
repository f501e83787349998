package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/platform/go/persistence"
	"github.com/odontox-io/odontox/platform/go/tenant"
)

// Repository defines the persistence operations required by the patients
// service. Every call is bound to the caller's tenant scope.
type Repository interface {
	Create(ctx context.Context, scope tenant.Scope, params persistence.CreatePatientParams) (persistence.Patient, error)
	Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (persistence.Patient, error)
	List(ctx context.Context, scope tenant.Scope, query string) ([]persistence.Patient, error)
}

type postgresRepository struct {
	patients *persistence.PatientStore
}

// NewPostgresRepository constructs a repository backed by the shared patient store.
func NewPostgresRepository(patients *persistence.PatientStore) Repository {
	if patients == nil {
		panic("patient store is required")
	}
	return &postgresRepository{patients: patients}
}

func (r *postgresRepository) Create(ctx context.Context, scope tenant.Scope, params persistence.CreatePatientParams) (persistence.Patient, error) {
	return r.patients.CreatePatient(ctx, scope, params)
}

func (r *postgresRepository) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (persistence.Patient, error) {
	return r.patients.GetPatient(ctx, scope, id)
}

func (r *postgresRepository) List(ctx context.Context, scope tenant.Scope, query string) ([]persistence.Patient, error) {
	return r.patients.ListPatients(ctx, scope, query)
}
