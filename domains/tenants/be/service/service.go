package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/domains/tenants/be/repo"
	"github.com/odontox-io/odontox/platform/go/persistence"
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

// ErrSlugTaken signals a registration attempt against an existing slug.
var ErrSlugTaken = errors.New("tenant slug already registered")

// slugPattern mirrors the registry constraint: lowercase segments joined by
// single hyphens.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Tenant is the domain view of a registered clinic.
type Tenant struct {
	ID        uuid.UUID
	Slug      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput carries a tenant registration request.
type CreateInput struct {
	Slug string
	Name string
}

// Service defines the platform operations on the tenant registry.
type Service interface {
	List(ctx context.Context, limit int) ([]Tenant, error)
	Create(ctx context.Context, input CreateInput) (Tenant, error)
}

type service struct {
	repo repo.Repository
}

// New constructs a tenants Service backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("tenants repository is required")
	}
	return &service{repo: r}
}

func (s *service) List(ctx context.Context, limit int) ([]Tenant, error) {
	records, err := s.repo.ListTenants(ctx, limit)
	if err != nil {
		return nil, err
	}

	tenants := make([]Tenant, 0, len(records))
	for _, rec := range records {
		tenants = append(tenants, mapTenant(rec))
	}
	return tenants, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (Tenant, error) {
	fieldErrors := FieldErrors{}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		fieldErrors.add("slug", "slug is required")
	} else if !slugPattern.MatchString(slug) {
		fieldErrors.add("slug", "slug must be lowercase alphanumeric segments separated by hyphens")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		fieldErrors.add("name", "name is required")
	}

	if len(fieldErrors) > 0 {
		return Tenant{}, &ValidationError{Fields: fieldErrors}
	}

	rec, err := s.repo.CreateTenant(ctx, slug, name)
	if err != nil {
		if errors.Is(err, persistence.ErrConflict) {
			return Tenant{}, ErrSlugTaken
		}
		return Tenant{}, err
	}

	return mapTenant(rec), nil
}

func mapTenant(rec persistence.TenantRecord) Tenant {
	return Tenant{
		ID:        rec.ID,
		Slug:      rec.Slug,
		Name:      rec.Name,
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
