package repo

import (
	"context"

	"github.com/odontox-io/odontox/platform/go/persistence"
)

// Repository defines the persistence operations required by the tenants service.
type Repository interface {
	ListTenants(ctx context.Context, limit int) ([]persistence.TenantRecord, error)
	CreateTenant(ctx context.Context, slug, name string) (persistence.TenantRecord, error)
}

type postgresRepository struct {
	tenants *persistence.TenantStore
}

// NewPostgresRepository constructs a repository backed by the shared tenant store.
func NewPostgresRepository(tenants *persistence.TenantStore) Repository {
	if tenants == nil {
		panic("tenant store is required")
	}
	return &postgresRepository{tenants: tenants}
}

func (r *postgresRepository) ListTenants(ctx context.Context, limit int) ([]persistence.TenantRecord, error) {
	return r.tenants.ListTenants(ctx, limit)
}

func (r *postgresRepository) CreateTenant(ctx context.Context, slug, name string) (persistence.TenantRecord, error) {
	return r.tenants.CreateTenant(ctx, slug, name)
}
