package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/odontox-io/odontox/platform/go/tenant"
)

// Appointment represents a row in the tenant-scoped appointments table.
type Appointment struct {
	ID         uuid.UUID `db:"id"`
	TenantID   uuid.UUID `db:"tenant_id"`
	PatientID  uuid.UUID `db:"patient_id"`
	ProviderID uuid.UUID `db:"provider_id"`
	StartAt    time.Time `db:"start_at"`
	EndAt      time.Time `db:"end_at"`
	Status     string    `db:"status"`
	Reason     *string   `db:"reason"`
	Notes      *string   `db:"notes"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// AppointmentStore exposes tenant-scoped persistence for appointments.
type AppointmentStore struct {
	db *TenantDB
}

func NewAppointmentStore(db *TenantDB) (*AppointmentStore, error) {
	if db == nil {
		return nil, errors.New("tenant db is required")
	}
	return &AppointmentStore{db: db}, nil
}

// CreateAppointmentParams captures the insertable appointment fields.
type CreateAppointmentParams struct {
	PatientID  uuid.UUID
	ProviderID uuid.UUID
	StartAt    time.Time
	EndAt      time.Time
	Status     string
	Reason     *string
	Notes      *string
}

// CreateAppointment inserts an appointment under the scope's tenant. The
// referenced patient and provider must belong to the same tenant; the
// isolation policies reject cross-tenant references at write time.
func (s *AppointmentStore) CreateAppointment(ctx context.Context, scope tenant.Scope, params CreateAppointmentParams) (Appointment, error) {
	var out Appointment
	err := s.db.WithTenant(ctx, scope.TenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
            INSERT INTO appointments (tenant_id, patient_id, provider_id, start_at, end_at, status, reason, notes)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            RETURNING id, tenant_id, patient_id, provider_id, start_at, end_at, status, reason, notes, created_at, updated_at
        `, scope.TenantID, params.PatientID, params.ProviderID, params.StartAt, params.EndAt,
			params.Status, params.Reason, params.Notes)

		var scanErr error
		out, scanErr = scanAppointment(row)
		return scanErr
	})
	return out, err
}

// ListAppointments returns the tenant's appointments, optionally filtered by
// patient, newest first.
func (s *AppointmentStore) ListAppointments(ctx context.Context, scope tenant.Scope, patientID *uuid.UUID) ([]Appointment, error) {
	var out []Appointment
	err := s.db.WithTenant(ctx, scope.TenantID, func(tx pgx.Tx) error {
		where := ""
		args := []any{}
		if patientID != nil {
			where = "WHERE patient_id = $1"
			args = append(args, *patientID)
		}

		rows, err := tx.Query(ctx, `
            SELECT id, tenant_id, patient_id, provider_id, start_at, end_at, status, reason, notes, created_at, updated_at
            FROM appointments `+where+`
            ORDER BY start_at DESC
            LIMIT 100
        `, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			a, scanErr := scanAppointment(rows)
			if scanErr != nil {
				return scanErr
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	return out, err
}

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	if err := row.Scan(&a.ID, &a.TenantID, &a.PatientID, &a.ProviderID, &a.StartAt, &a.EndAt, &a.Status, &a.Reason, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Appointment{}, err
	}
	return a, nil
}
