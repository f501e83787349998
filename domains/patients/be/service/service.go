package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/domains/patients/be/repo"
	"github.com/odontox-io/odontox/platform/go/persistence"
	"github.com/odontox-io/odontox/platform/go/tenant"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// Domain sentinel errors.
var (
	ErrNotFound      = errors.New("patient not found")
	ErrNoTenantScope = errors.New("tenant scope missing from context")
)

// Patient is the domain view of a patient record.
type Patient struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput carries a patient registration request.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
}

// Service defines the business operations for the patients domain. The
// tenant binding comes from the request context; callers cannot name a
// tenant explicitly.
type Service interface {
	Create(ctx context.Context, input CreateInput) (Patient, error)
	Get(ctx context.Context, id uuid.UUID) (Patient, error)
	List(ctx context.Context, query string) ([]Patient, error)
}

type service struct {
	repo repo.Repository
}

// New constructs a patients Service backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("patients repository is required")
	}
	return &service{repo: r}
}

func (s *service) Create(ctx context.Context, input CreateInput) (Patient, error) {
	scope, ok := tenant.FromContext(ctx)
	if !ok {
		return Patient{}, ErrNoTenantScope
	}

	fieldErrors := FieldErrors{}
	if strings.TrimSpace(input.FirstName) == "" {
		fieldErrors.add("firstName", "firstName is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		fieldErrors.add("lastName", "lastName is required")
	}
	if input.Email != nil && !strings.Contains(*input.Email, "@") {
		fieldErrors.add("email", "email must contain '@'")
	}
	if len(fieldErrors) > 0 {
		return Patient{}, &ValidationError{Fields: fieldErrors}
	}

	rec, err := s.repo.Create(ctx, scope, persistence.CreatePatientParams{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
	})
	if err != nil {
		return Patient{}, err
	}
	return mapPatient(rec), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Patient, error) {
	scope, ok := tenant.FromContext(ctx)
	if !ok {
		return Patient{}, ErrNoTenantScope
	}
	if id == uuid.Nil {
		return Patient{}, ErrNotFound
	}

	rec, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Patient{}, ErrNotFound
		}
		return Patient{}, err
	}
	return mapPatient(rec), nil
}

func (s *service) List(ctx context.Context, query string) ([]Patient, error) {
	scope, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, ErrNoTenantScope
	}

	records, err := s.repo.List(ctx, scope, query)
	if err != nil {
		return nil, err
	}

	patients := make([]Patient, 0, len(records))
	for _, rec := range records {
		patients = append(patients, mapPatient(rec))
	}
	return patients, nil
}

func mapPatient(rec persistence.Patient) Patient {
	return Patient{
		ID:        rec.ID,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Email:     rec.Email,
		Phone:     rec.Phone,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func (f FieldErrors) add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}
