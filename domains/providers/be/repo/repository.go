package repo

import (
	"context"

	"github.com/odontox-io/odontox/platform/go/persistence"
	"github.com/odontox-io/odontox/platform/go/tenant"
)

// Repository defines the persistence operations required by the providers
// service. Every call is bound to the caller's tenant scope.
type Repository interface {
	Create(ctx context.Context, scope tenant.Scope, params persistence.CreateProviderParams) (persistence.Provider, error)
	List(ctx context.Context, scope tenant.Scope) ([]persistence.Provider, error)
}

type postgresRepository struct {
	providers *persistence.ProviderStore
}

// NewPostgresRepository constructs a repository backed by the shared provider store.
func NewPostgresRepository(providers *persistence.ProviderStore) Repository {
	if providers == nil {
		panic("provider store is required")
	}
	return &postgresRepository{providers: providers}
}

func (r *postgresRepository) Create(ctx context.Context, scope tenant.Scope, params persistence.CreateProviderParams) (persistence.Provider, error) {
	return r.providers.CreateProvider(ctx, scope, params)
}

func (r *postgresRepository) List(ctx context.Context, scope tenant.Scope) ([]persistence.Provider, error) {
	return r.providers.ListProviders(ctx, scope)
}
