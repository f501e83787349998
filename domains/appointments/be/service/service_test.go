package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/odontox-io/odontox/domains/appointments/be/repo"
	"github.com/odontox-io/odontox/platform/go/authz"
	"github.com/odontox-io/odontox/platform/go/tenant"
)

func scopedCtx(tenantID uuid.UUID) context.Context {
	return tenant.WithScope(context.Background(), tenant.Scope{
		TenantID:    tenantID,
		PrincipalID: uuid.New(),
		Role:        authz.RoleReception,
	})
}

func TestCreateRequiresTenantScope(t *testing.T) {
	t.Parallel()

	svc := New(repo.NewMemoryRepository())

	_, err := svc.Create(context.Background(), CreateInput{})
	require.ErrorIs(t, err, ErrNoTenantScope)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc := New(repo.NewMemoryRepository())
	ctx := scopedCtx(uuid.New())

	start := time.Now().Add(time.Hour)
	badStatus := "rescheduled"

	_, err := svc.Create(ctx, CreateInput{
		PatientID:  uuid.New(),
		ProviderID: uuid.New(),
		StartAt:    start,
		EndAt:      start.Add(-30 * time.Minute),
		Status:     &badStatus,
	})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "endAt")
	require.Contains(t, validationErr.Fields, "status")

	_, err = svc.Create(ctx, CreateInput{})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "patientId")
	require.Contains(t, validationErr.Fields, "providerId")
	require.Contains(t, validationErr.Fields, "startAt")
	require.Contains(t, validationErr.Fields, "endAt")
}

func TestCreateDefaultsToScheduled(t *testing.T) {
	t.Parallel()

	svc := New(repo.NewMemoryRepository())
	ctx := scopedCtx(uuid.New())

	start := time.Now().Add(time.Hour)
	created, err := svc.Create(ctx, CreateInput{
		PatientID:  uuid.New(),
		ProviderID: uuid.New(),
		StartAt:    start,
		EndAt:      start.Add(30 * time.Minute),
	})
	require.NoError(t, err)
	require.Equal(t, "scheduled", created.Status)
}

func TestListFiltersByPatient(t *testing.T) {
	t.Parallel()

	svc := New(repo.NewMemoryRepository())
	ctx := scopedCtx(uuid.New())

	patientA := uuid.New()
	patientB := uuid.New()
	providerID := uuid.New()
	start := time.Now().Add(time.Hour)

	for _, patientID := range []uuid.UUID{patientA, patientA, patientB} {
		_, err := svc.Create(ctx, CreateInput{
			PatientID:  patientID,
			ProviderID: providerID,
			StartAt:    start,
			EndAt:      start.Add(30 * time.Minute),
		})
		require.NoError(t, err)
		start = start.Add(time.Hour)
	}

	matched, err := svc.List(ctx, ListOptions{PatientID: &patientA})
	require.NoError(t, err)
	require.Len(t, matched, 2)

	all, err := svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestCrossTenantAppointmentsAreInvisible(t *testing.T) {
	t.Parallel()

	svc := New(repo.NewMemoryRepository())

	start := time.Now().Add(time.Hour)
	_, err := svc.Create(scopedCtx(uuid.New()), CreateInput{
		PatientID:  uuid.New(),
		ProviderID: uuid.New(),
		StartAt:    start,
		EndAt:      start.Add(30 * time.Minute),
	})
	require.NoError(t, err)

	listed, err := svc.List(scopedCtx(uuid.New()), ListOptions{})
	require.NoError(t, err)
	require.Empty(t, listed)
}
