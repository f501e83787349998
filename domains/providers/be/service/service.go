package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/domains/providers/be/repo"
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

// ErrNoTenantScope signals a call without a tenant binding in the context.
var ErrNoTenantScope = errors.New("tenant scope missing from context")

// Provider is the domain view of a clinical provider record.
type Provider struct {
	ID             uuid.UUID
	FirstName      string
	LastName       string
	Email          *string
	LicenseNumber  *string
	Specialization *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateInput carries a provider registration request.
type CreateInput struct {
	FirstName      string
	LastName       string
	Email          *string
	LicenseNumber  *string
	Specialization *string
}

// Service defines the business operations for the providers domain.
type Service interface {
	Create(ctx context.Context, input CreateInput) (Provider, error)
	List(ctx context.Context) ([]Provider, error)
}

type service struct {
	repo repo.Repository
}

// New constructs a providers Service backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("providers repository is required")
	}
	return &service{repo: r}
}

func (s *service) Create(ctx context.Context, input CreateInput) (Provider, error) {
	scope, ok := tenant.FromContext(ctx)
	if !ok {
		return Provider{}, ErrNoTenantScope
	}

	fieldErrors := FieldErrors{}
	if strings.TrimSpace(input.FirstName) == "" {
		fieldErrors.add("firstName", "firstName is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		fieldErrors.add("lastName", "lastName is required")
	}
	if len(fieldErrors) > 0 {
		return Provider{}, &ValidationError{Fields: fieldErrors}
	}

	rec, err := s.repo.Create(ctx, scope, persistence.CreateProviderParams{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		LicenseNumber:  input.LicenseNumber,
		Specialization: input.Specialization,
	})
	if err != nil {
		return Provider{}, err
	}
	return mapProvider(rec), nil
}

func (s *service) List(ctx context.Context) ([]Provider, error) {
	scope, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, ErrNoTenantScope
	}

	records, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	providers := make([]Provider, 0, len(records))
	for _, rec := range records {
		providers = append(providers, mapProvider(rec))
	}
	return providers, nil
}

func mapProvider(rec persistence.Provider) Provider {
	return Provider{
		ID:             rec.ID,
		FirstName:      rec.FirstName,
		LastName:       rec.LastName,
		Email:          rec.Email,
		LicenseNumber:  rec.LicenseNumber,
		Specialization: rec.Specialization,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

func (f FieldErrors) add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}
