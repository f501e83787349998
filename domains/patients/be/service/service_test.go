package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/odontox-io/odontox/domains/patients/be/repo"
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

	_, err := svc.Create(context.Background(), CreateInput{FirstName: "Ana", LastName: "Silva"})
	require.ErrorIs(t, err, ErrNoTenantScope)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc := New(repo.NewMemoryRepository())
	ctx := scopedCtx(uuid.New())

	_, err := svc.Create(ctx, CreateInput{})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "firstName")
	require.Contains(t, validationErr.Fields, "lastName")
}

func TestCrossTenantRecordsAreInvisible(t *testing.T) {
	t.Parallel()

	svc := New(repo.NewMemoryRepository())

	tenantA := uuid.New()
	tenantB := uuid.New()

	created, err := svc.Create(scopedCtx(tenantA), CreateInput{
		FirstName: "Ana",
		LastName:  "Silva",
	})
	require.NoError(t, err)

	// The owning tenant sees the record.
	got, err := svc.Get(scopedCtx(tenantA), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	// Another tenant cannot tell the record exists at all.
	_, err = svc.Get(scopedCtx(tenantB), created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	listed, err := svc.List(scopedCtx(tenantB), "")
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestListFiltersByFirstName(t *testing.T) {
	t.Parallel()

	svc := New(repo.NewMemoryRepository())
	tenantID := uuid.New()
	ctx := scopedCtx(tenantID)

	_, err := svc.Create(ctx, CreateInput{FirstName: "Ana", LastName: "Silva"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{FirstName: "Bruno", LastName: "Costa"})
	require.NoError(t, err)

	matched, err := svc.List(ctx, "an")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, "Ana", matched[0].FirstName)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}
