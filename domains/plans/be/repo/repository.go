package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/platform/go/persistence"
)

// Repository defines the persistence operations required by the plans service.
type Repository interface {
	ListPlans(ctx context.Context) ([]persistence.Plan, error)
	UpsertMissingPlan(ctx context.Context, key, name string) (bool, error)
	ListPlanFeatures(ctx context.Context, planID *uuid.UUID) ([]persistence.PlanFeature, error)
	CreatePlanFeature(ctx context.Context, params persistence.CreatePlanFeatureParams) (persistence.PlanFeature, error)
}

type postgresRepository struct {
	plans *persistence.PlanStore
}

// NewPostgresRepository constructs a repository backed by the shared plan store.
func NewPostgresRepository(plans *persistence.PlanStore) Repository {
	if plans == nil {
		panic("plan store is required")
	}
	return &postgresRepository{plans: plans}
}

func (r *postgresRepository) ListPlans(ctx context.Context) ([]persistence.Plan, error) {
	return r.plans.ListPlans(ctx)
}

func (r *postgresRepository) UpsertMissingPlan(ctx context.Context, key, name string) (bool, error) {
	return r.plans.UpsertMissingPlan(ctx, key, name)
}

func (r *postgresRepository) ListPlanFeatures(ctx context.Context, planID *uuid.UUID) ([]persistence.PlanFeature, error) {
	return r.plans.ListPlanFeatures(ctx, planID)
}

func (r *postgresRepository) CreatePlanFeature(ctx context.Context, params persistence.CreatePlanFeatureParams) (persistence.PlanFeature, error) {
	return r.plans.CreatePlanFeature(ctx, params)
}
