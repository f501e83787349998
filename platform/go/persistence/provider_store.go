package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/odontox-io/odontox/platform/go/tenant"
)

// Provider represents a row in the tenant-scoped providers table.
type Provider struct {
	ID             uuid.UUID `db:"id"`
	TenantID       uuid.UUID `db:"tenant_id"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	Email          *string   `db:"email"`
	LicenseNumber  *string   `db:"license_number"`
	Specialization *string   `db:"specialization"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// ProviderStore exposes tenant-scoped persistence for providers.
type ProviderStore struct {
	db *TenantDB
}

func NewProviderStore(db *TenantDB) (*ProviderStore, error) {
	if db == nil {
		return nil, errors.New("tenant db is required")
	}
	return &ProviderStore{db: db}, nil
}

// CreateProviderParams captures the insertable provider fields.
type CreateProviderParams struct {
	FirstName      string
	LastName       string
	Email          *string
	LicenseNumber  *string
	Specialization *string
}

// CreateProvider inserts a provider under the scope's tenant.
func (s *ProviderStore) CreateProvider(ctx context.Context, scope tenant.Scope, params CreateProviderParams) (Provider, error) {
	var out Provider
	err := s.db.WithTenant(ctx, scope.TenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
            INSERT INTO providers (tenant_id, first_name, last_name, email, license_number, specialization)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, tenant_id, first_name, last_name, email, license_number, specialization, created_at, updated_at
        `, scope.TenantID, strings.TrimSpace(params.FirstName), strings.TrimSpace(params.LastName),
			params.Email, params.LicenseNumber, params.Specialization)

		var scanErr error
		out, scanErr = scanProvider(row)
		return scanErr
	})
	return out, err
}

// ListProviders returns the tenant's providers.
func (s *ProviderStore) ListProviders(ctx context.Context, scope tenant.Scope) ([]Provider, error) {
	var out []Provider
	err := s.db.WithTenant(ctx, scope.TenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
            SELECT id, tenant_id, first_name, last_name, email, license_number, specialization, created_at, updated_at
            FROM providers
            ORDER BY last_name ASC, first_name ASC
        `)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, scanErr := scanProvider(rows)
			if scanErr != nil {
				return scanErr
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	return out, err
}

func scanProvider(row pgx.Row) (Provider, error) {
	var p Provider
	if err := row.Scan(&p.ID, &p.TenantID, &p.FirstName, &p.LastName, &p.Email, &p.LicenseNumber, &p.Specialization, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Provider{}, err
	}
	return p, nil
}
