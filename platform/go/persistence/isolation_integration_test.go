package persistence

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/odontox-io/odontox/platform/go/authz"
	"github.com/odontox-io/odontox/platform/go/tenant"
)

// TestTenantIsolationEndToEnd exercises the row-level security policies against
// a real database. Set TEST_DATABASE_URL to a superuser DSN to run it.
func TestTenantIsolationEndToEnd(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	adminPool, err := NewPool(ctx, PoolConfig{ConnString: dsn})
	require.NoError(t, err)
	defer ClosePool(adminPool)

	require.NoError(t, ApplySchema(ctx, adminPool))

	// Superusers and BYPASSRLS roles are not subject to the policies, so
	// tenant data access runs as a dedicated low-privilege role.
	_, err = adminPool.Exec(ctx, `
        DO $$ BEGIN
            CREATE ROLE odontox_app LOGIN PASSWORD 'odontox_app';
        EXCEPTION WHEN duplicate_object THEN NULL; END $$;
    `)
	require.NoError(t, err)
	_, err = adminPool.Exec(ctx, `GRANT USAGE ON SCHEMA public TO odontox_app`)
	require.NoError(t, err)
	_, err = adminPool.Exec(ctx, `GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA public TO odontox_app`)
	require.NoError(t, err)

	appCfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	appCfg.ConnConfig.User = "odontox_app"
	appCfg.ConnConfig.Password = "odontox_app"
	appPool, err := pgxpool.NewWithConfig(ctx, appCfg)
	require.NoError(t, err)
	defer appPool.Close()

	tenantStore, err := NewTenantStore(adminPool)
	require.NoError(t, err)

	suffix := uuid.NewString()[:8]
	tenantA, err := tenantStore.CreateTenant(ctx, "isolation-a-"+suffix, "Clinic A")
	require.NoError(t, err)
	tenantB, err := tenantStore.CreateTenant(ctx, "isolation-b-"+suffix, "Clinic B")
	require.NoError(t, err)

	patientStore, err := NewPatientStore(NewTenantDB(appPool))
	require.NoError(t, err)

	scopeA := tenant.Scope{TenantID: tenantA.ID, Role: authz.RoleReception}
	scopeB := tenant.Scope{TenantID: tenantB.ID, Role: authz.RoleReception}

	created, err := patientStore.CreatePatient(ctx, scopeA, CreatePatientParams{
		FirstName: "Ana",
		LastName:  "Silva",
	})
	require.NoError(t, err)
	require.Equal(t, tenantA.ID, created.TenantID)

	// The owning tenant sees its row.
	got, err := patientStore.GetPatient(ctx, scopeA, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	// Another tenant sees nothing, and cannot tell absence from denial.
	_, err = patientStore.GetPatient(ctx, scopeB, created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	listed, err := patientStore.ListPatients(ctx, scopeB, "")
	require.NoError(t, err)
	require.Empty(t, listed)

	// With no tenant binding at all the policies match zero rows.
	db := NewTenantDB(appPool)
	err = db.WithAdmin(ctx, func(tx pgx.Tx) error {
		var count int
		if scanErr := tx.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&count); scanErr != nil {
			return scanErr
		}
		require.Zero(t, count)
		return nil
	})
	require.NoError(t, err)
}
