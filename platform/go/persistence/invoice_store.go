package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/odontox-io/odontox/platform/go/tenant"
)

// Invoice represents a row in the tenant-scoped invoices table.
type Invoice struct {
	ID        uuid.UUID  `db:"id"`
	TenantID  uuid.UUID  `db:"tenant_id"`
	PatientID uuid.UUID  `db:"patient_id"`
	Status    string     `db:"status"`
	Currency  string     `db:"currency"`
	Total     string     `db:"total"`
	IssuedAt  *time.Time `db:"issued_at"`
	DueAt     *time.Time `db:"due_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// InvoiceStore exposes tenant-scoped persistence for invoices.
type InvoiceStore struct {
	db *TenantDB
}

func NewInvoiceStore(db *TenantDB) (*InvoiceStore, error) {
	if db == nil {
		return nil, errors.New("tenant db is required")
	}
	return &InvoiceStore{db: db}, nil
}

// CreateInvoiceParams captures the insertable invoice fields. Total is a
// decimal string to avoid float drift on money amounts.
type CreateInvoiceParams struct {
	PatientID uuid.UUID
	Status    string
	Currency  string
	Total     string
	IssuedAt  *time.Time
	DueAt     *time.Time
}

// CreateInvoice inserts an invoice under the scope's tenant.
func (s *InvoiceStore) CreateInvoice(ctx context.Context, scope tenant.Scope, params CreateInvoiceParams) (Invoice, error) {
	var out Invoice
	err := s.db.WithTenant(ctx, scope.TenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
            INSERT INTO invoices (tenant_id, patient_id, status, currency, total, issued_at, due_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING id, tenant_id, patient_id, status, currency, total, issued_at, due_at, created_at, updated_at
        `, scope.TenantID, params.PatientID, params.Status, params.Currency, params.Total,
			params.IssuedAt, params.DueAt)

		var scanErr error
		out, scanErr = scanInvoice(row)
		return scanErr
	})
	return out, err
}

// ListInvoices returns the tenant's invoices, newest issue date first.
func (s *InvoiceStore) ListInvoices(ctx context.Context, scope tenant.Scope) ([]Invoice, error) {
	var out []Invoice
	err := s.db.WithTenant(ctx, scope.TenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
            SELECT id, tenant_id, patient_id, status, currency, total, issued_at, due_at, created_at, updated_at
            FROM invoices
            ORDER BY issued_at DESC NULLS LAST, created_at DESC
            LIMIT 100
        `)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			inv, scanErr := scanInvoice(rows)
			if scanErr != nil {
				return scanErr
			}
			out = append(out, inv)
		}
		return rows.Err()
	})
	return out, err
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	if err := row.Scan(&inv.ID, &inv.TenantID, &inv.PatientID, &inv.Status, &inv.Currency, &inv.Total, &inv.IssuedAt, &inv.DueAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}
