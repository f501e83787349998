package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/domains/plans/be/repo"
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

// ErrCatalogUnavailable signals that no billing-provider catalog is configured.
var ErrCatalogUnavailable = errors.New("billing catalog not configured")

// Plan is the domain view of a subscription plan.
type Plan struct {
	ID        uuid.UUID
	Key       string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Feature is a switch or limit attached to a plan.
type Feature struct {
	ID        uuid.UUID
	PlanID    uuid.UUID
	Key       string
	Enabled   bool
	HardLimit *int
	SoftLimit *int
	Metadata  map[string]any
	CreatedAt time.Time
}

// SyncResult reports the outcome of a catalog sync.
type SyncResult struct {
	Seen     int
	Inserted int
}

// CreateFeatureInput carries a feature registration request.
type CreateFeatureInput struct {
	PlanID    uuid.UUID
	Key       string
	Enabled   bool
	HardLimit *int
	SoftLimit *int
	Metadata  map[string]any
}

// Service defines the platform operations on the plan catalog.
type Service interface {
	List(ctx context.Context) ([]Plan, error)
	Sync(ctx context.Context) (SyncResult, error)
	ListFeatures(ctx context.Context, planID *uuid.UUID) ([]Feature, error)
	CreateFeature(ctx context.Context, input CreateFeatureInput) (Feature, error)
}

type service struct {
	repo    repo.Repository
	catalog ProductCatalog
}

// New constructs a plans Service. catalog may be nil when no billing provider
// is configured; Sync then fails with ErrCatalogUnavailable.
func New(r repo.Repository, catalog ProductCatalog) Service {
	if r == nil {
		panic("plans repository is required")
	}
	return &service{repo: r, catalog: catalog}
}

func (s *service) List(ctx context.Context) ([]Plan, error) {
	records, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, err
	}

	plans := make([]Plan, 0, len(records))
	for _, rec := range records {
		plans = append(plans, mapPlan(rec))
	}
	return plans, nil
}

// Sync pulls the provider's active products and inserts plans that are not
// yet in the catalog. Existing plans are never modified; sync only fills gaps.
func (s *service) Sync(ctx context.Context) (SyncResult, error) {
	if s.catalog == nil {
		return SyncResult{}, ErrCatalogUnavailable
	}

	products, err := s.catalog.ListActiveProducts(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{Seen: len(products)}
	for _, product := range products {
		inserted, err := s.repo.UpsertMissingPlan(ctx, product.Key, product.Name)
		if err != nil {
			return result, err
		}
		if inserted {
			result.Inserted++
		}
	}
	return result, nil
}

func (s *service) ListFeatures(ctx context.Context, planID *uuid.UUID) ([]Feature, error) {
	records, err := s.repo.ListPlanFeatures(ctx, planID)
	if err != nil {
		return nil, err
	}

	features := make([]Feature, 0, len(records))
	for _, rec := range records {
		features = append(features, mapFeature(rec))
	}
	return features, nil
}

func (s *service) CreateFeature(ctx context.Context, input CreateFeatureInput) (Feature, error) {
	fieldErrors := FieldErrors{}

	if input.PlanID == uuid.Nil {
		fieldErrors.add("planId", "planId is required")
	}
	key := strings.TrimSpace(input.Key)
	if key == "" {
		fieldErrors.add("key", "key is required")
	}
	if input.HardLimit != nil && *input.HardLimit < 0 {
		fieldErrors.add("hardLimit", "hardLimit cannot be negative")
	}
	if input.SoftLimit != nil && *input.SoftLimit < 0 {
		fieldErrors.add("softLimit", "softLimit cannot be negative")
	}

	if len(fieldErrors) > 0 {
		return Feature{}, &ValidationError{Fields: fieldErrors}
	}

	rec, err := s.repo.CreatePlanFeature(ctx, persistence.CreatePlanFeatureParams{
		PlanID:    input.PlanID,
		Key:       key,
		Enabled:   input.Enabled,
		HardLimit: input.HardLimit,
		SoftLimit: input.SoftLimit,
		Metadata:  input.Metadata,
	})
	if err != nil {
		return Feature{}, err
	}

	return mapFeature(rec), nil
}

func mapPlan(rec persistence.Plan) Plan {
	return Plan{
		ID:        rec.ID,
		Key:       rec.Key,
		Name:      rec.Name,
		Active:    rec.Active,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func mapFeature(rec persistence.PlanFeature) Feature {
	return Feature{
		ID:        rec.ID,
		PlanID:    rec.PlanID,
		Key:       rec.Key,
		Enabled:   rec.Enabled,
		HardLimit: rec.HardLimit,
		SoftLimit: rec.SoftLimit,
		Metadata:  rec.Metadata,
		CreatedAt: rec.CreatedAt,
	}
}

func (f FieldErrors) add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}
