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

// Patient represents a row in the tenant-scoped patients table.
type Patient struct {
	ID        uuid.UUID `db:"id"`
	TenantID  uuid.UUID `db:"tenant_id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     *string   `db:"email"`
	Phone     *string   `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PatientStore exposes tenant-scoped persistence for patients. Every method
// requires a tenant Scope; there is no unscoped access path.
type PatientStore struct {
	db *TenantDB
}

func NewPatientStore(db *TenantDB) (*PatientStore, error) {
	if db == nil {
		return nil, errors.New("tenant db is required")
	}
	return &PatientStore{db: db}, nil
}

// CreatePatientParams captures the insertable patient fields.
type CreatePatientParams struct {
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
}

// CreatePatient inserts a patient under the scope's tenant.
func (s *PatientStore) CreatePatient(ctx context.Context, scope tenant.Scope, params CreatePatientParams) (Patient, error) {
	var out Patient
	err := s.db.WithTenant(ctx, scope.TenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
            INSERT INTO patients (tenant_id, first_name, last_name, email, phone)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id, tenant_id, first_name, last_name, email, phone, created_at, updated_at
        `, scope.TenantID, strings.TrimSpace(params.FirstName), strings.TrimSpace(params.LastName), params.Email, params.Phone)

		var scanErr error
		out, scanErr = scanPatient(row)
		return scanErr
	})
	return out, err
}

// GetPatient returns a patient by id. A patient of another tenant is
// indistinguishable from an absent one.
func (s *PatientStore) GetPatient(ctx context.Context, scope tenant.Scope, id uuid.UUID) (Patient, error) {
	var out Patient
	err := s.db.WithTenant(ctx, scope.TenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
            SELECT id, tenant_id, first_name, last_name, email, phone, created_at, updated_at
            FROM patients WHERE id = $1
        `, id)

		var scanErr error
		out, scanErr = scanPatient(row)
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return scanErr
	})
	return out, err
}

// ListPatients returns the tenant's patients, optionally filtered by a
// case-insensitive first-name prefix match.
func (s *PatientStore) ListPatients(ctx context.Context, scope tenant.Scope, query string) ([]Patient, error) {
	var out []Patient
	err := s.db.WithTenant(ctx, scope.TenantID, func(tx pgx.Tx) error {
		where := ""
		args := []any{}
		if q := strings.TrimSpace(query); q != "" {
			where = "WHERE first_name ILIKE $1"
			args = append(args, "%"+q+"%")
		}

		rows, err := tx.Query(ctx, `
            SELECT id, tenant_id, first_name, last_name, email, phone, created_at, updated_at
            FROM patients `+where+`
            ORDER BY last_name ASC, first_name ASC
            LIMIT 50
        `, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, scanErr := scanPatient(rows)
			if scanErr != nil {
				return scanErr
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	return out, err
}

func scanPatient(row pgx.Row) (Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.TenantID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Patient{}, err
	}
	return p, nil
}
