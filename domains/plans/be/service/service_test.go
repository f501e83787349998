package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/odontox-io/odontox/platform/go/persistence"
)

type mockRepository struct {
	listPlansFn         func(ctx context.Context) ([]persistence.Plan, error)
	upsertMissingPlanFn func(ctx context.Context, key, name string) (bool, error)
	listFeaturesFn      func(ctx context.Context, planID *uuid.UUID) ([]persistence.PlanFeature, error)
	createFeatureFn     func(ctx context.Context, params persistence.CreatePlanFeatureParams) (persistence.PlanFeature, error)
}

func (m *mockRepository) ListPlans(ctx context.Context) ([]persistence.Plan, error) {
	if m.listPlansFn == nil {
		panic("listPlansFn not configured")
	}
	return m.listPlansFn(ctx)
}

func (m *mockRepository) UpsertMissingPlan(ctx context.Context, key, name string) (bool, error) {
	if m.upsertMissingPlanFn == nil {
		panic("upsertMissingPlanFn not configured")
	}
	return m.upsertMissingPlanFn(ctx, key, name)
}

func (m *mockRepository) ListPlanFeatures(ctx context.Context, planID *uuid.UUID) ([]persistence.PlanFeature, error) {
	if m.listFeaturesFn == nil {
		panic("listFeaturesFn not configured")
	}
	return m.listFeaturesFn(ctx, planID)
}

func (m *mockRepository) CreatePlanFeature(ctx context.Context, params persistence.CreatePlanFeatureParams) (persistence.PlanFeature, error) {
	if m.createFeatureFn == nil {
		panic("createFeatureFn not configured")
	}
	return m.createFeatureFn(ctx, params)
}

type mockCatalog struct {
	products []CatalogProduct
	err      error
}

func (m *mockCatalog) ListActiveProducts(_ context.Context) ([]CatalogProduct, error) {
	return m.products, m.err
}

func TestSyncInsertsMissingPlansOnly(t *testing.T) {
	t.Parallel()

	existing := map[string]bool{"basic": true}
	var upserted []string

	repository := &mockRepository{
		upsertMissingPlanFn: func(_ context.Context, key, _ string) (bool, error) {
			upserted = append(upserted, key)
			return !existing[key], nil
		},
	}
	catalog := &mockCatalog{products: []CatalogProduct{
		{Key: "basic", Name: "Basic"},
		{Key: "pro", Name: "Pro"},
		{Key: "enterprise", Name: "Enterprise"},
	}}

	svc := New(repository, catalog)

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, result.Seen)
	require.Equal(t, 2, result.Inserted)
	require.Equal(t, []string{"basic", "pro", "enterprise"}, upserted)
}

func TestSyncWithoutCatalog(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{}, nil)

	_, err := svc.Sync(context.Background())
	require.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestSyncCatalogError(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{}, &mockCatalog{err: errors.New("stripe unreachable")})

	_, err := svc.Sync(context.Background())
	require.Error(t, err)
}

func TestCreateFeatureValidation(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{}, nil)

	negative := -1
	_, err := svc.CreateFeature(context.Background(), CreateFeatureInput{
		Key:       "",
		HardLimit: &negative,
	})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "planId")
	require.Contains(t, validationErr.Fields, "key")
	require.Contains(t, validationErr.Fields, "hardLimit")
}

func TestCreateFeature(t *testing.T) {
	t.Parallel()

	planID := uuid.New()
	repository := &mockRepository{
		createFeatureFn: func(_ context.Context, params persistence.CreatePlanFeatureParams) (persistence.PlanFeature, error) {
			require.Equal(t, planID, params.PlanID)
			require.Equal(t, "max-patients", params.Key)
			return persistence.PlanFeature{
				ID:      uuid.New(),
				PlanID:  params.PlanID,
				Key:     params.Key,
				Enabled: params.Enabled,
			}, nil
		},
	}
	svc := New(repository, nil)

	feature, err := svc.CreateFeature(context.Background(), CreateFeatureInput{
		PlanID:  planID,
		Key:     " max-patients ",
		Enabled: true,
	})
	require.NoError(t, err)
	require.Equal(t, "max-patients", feature.Key)
	require.True(t, feature.Enabled)
}
