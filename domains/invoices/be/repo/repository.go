package repo

import (
	"context"

	"github.com/odontox-io/odontox/platform/go/persistence"
	"github.com/odontox-io/odontox/platform/go/tenant"
)

// Repository defines the persistence operations required by the invoices
// service. Every call is bound to the caller's tenant scope.
type Repository interface {
	Create(ctx context.Context, scope tenant.Scope, params persistence.CreateInvoiceParams) (persistence.Invoice, error)
	List(ctx context.Context, scope tenant.Scope) ([]persistence.Invoice, error)
}

type postgresRepository struct {
	invoices *persistence.InvoiceStore
}

// NewPostgresRepository constructs a repository backed by the shared invoice store.
func NewPostgresRepository(invoices *persistence.InvoiceStore) Repository {
	if invoices == nil {
		panic("invoice store is required")
	}
	return &postgresRepository{invoices: invoices}
}

func (r *postgresRepository) Create(ctx context.Context, scope tenant.Scope, params persistence.CreateInvoiceParams) (persistence.Invoice, error) {
	return r.invoices.CreateInvoice(ctx, scope, params)
}

func (r *postgresRepository) List(ctx context.Context, scope tenant.Scope) ([]persistence.Invoice, error) {
	return r.invoices.ListInvoices(ctx, scope)
}
