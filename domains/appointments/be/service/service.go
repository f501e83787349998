package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/domains/appointments/be/repo"
	"github.com/odontox-io/odontox/platform/go/persistence"
	"github.com/odontox-io/odontox/platform/go/tenant"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// ErrNoTenantScope signals a call without a tenant binding in the context.
var ErrNoTenantScope = errors.New("tenant scope missing from context")

// Appointment statuses accepted at creation.
var validStatuses = map[string]struct{}{
	"scheduled": {},
	"confirmed": {},
	"completed": {},
	"cancelled": {},
	"no_show":   {},
}

// Appointment is the domain view of a scheduled visit.
type Appointment struct {
	ID         uuid.UUID
	PatientID  uuid.UUID
	ProviderID uuid.UUID
	StartAt    time.Time
	EndAt      time.Time
	Status     string
	Reason     *string
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateInput carries an appointment booking request.
type CreateInput struct {
	PatientID  uuid.UUID
	ProviderID uuid.UUID
	StartAt    time.Time
	EndAt      time.Time
	Status     *string
	Reason     *string
	Notes      *string
}

// ListOptions controls appointment listing.
type ListOptions struct {
	PatientID *uuid.UUID
}

// Service defines the business operations for the appointments domain.
type Service interface {
	Create(ctx context.Context, input CreateInput) (Appointment, error)
	List(ctx context.Context, opts ListOptions) ([]Appointment, error)
}

type service struct {
	repo repo.Repository
}

// New constructs an appointments Service backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("appointments repository is required")
	}
	return &service{repo: r}
}

func (s *service) Create(ctx context.Context, input CreateInput) (Appointment, error) {
	scope, ok := tenant.FromContext(ctx)
	if !ok {
		return Appointment{}, ErrNoTenantScope
	}

	fieldErrors := FieldErrors{}
	if input.PatientID == uuid.Nil {
		fieldErrors.add("patientId", "patientId is required")
	}
	if input.ProviderID == uuid.Nil {
		fieldErrors.add("providerId", "providerId is required")
	}
	if input.StartAt.IsZero() {
		fieldErrors.add("startAt", "startAt is required")
	}
	if input.EndAt.IsZero() {
		fieldErrors.add("endAt", "endAt is required")
	} else if !input.StartAt.IsZero() && !input.EndAt.After(input.StartAt) {
		fieldErrors.add("endAt", "endAt must be after startAt")
	}

	status := "scheduled"
	if input.Status != nil && strings.TrimSpace(*input.Status) != "" {
		status = strings.TrimSpace(*input.Status)
		if _, ok := validStatuses[status]; !ok {
			fieldErrors.add("status", "unsupported status")
		}
	}

	if len(fieldErrors) > 0 {
		return Appointment{}, &ValidationError{Fields: fieldErrors}
	}

	rec, err := s.repo.Create(ctx, scope, persistence.CreateAppointmentParams{
		PatientID:  input.PatientID,
		ProviderID: input.ProviderID,
		StartAt:    input.StartAt,
		EndAt:      input.EndAt,
		Status:     status,
		Reason:     input.Reason,
		Notes:      input.Notes,
	})
	if err != nil {
		return Appointment{}, err
	}
	return mapAppointment(rec), nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]Appointment, error) {
	scope, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, ErrNoTenantScope
	}

	records, err := s.repo.List(ctx, scope, opts.PatientID)
	if err != nil {
		return nil, err
	}

	appointments := make([]Appointment, 0, len(records))
	for _, rec := range records {
		appointments = append(appointments, mapAppointment(rec))
	}
	return appointments, nil
}

func mapAppointment(rec persistence.Appointment) Appointment {
	return Appointment{
		ID:         rec.ID,
		PatientID:  rec.PatientID,
		ProviderID: rec.ProviderID,
		StartAt:    rec.StartAt,
		EndAt:      rec.EndAt,
		Status:     rec.Status,
		Reason:     rec.Reason,
		Notes:      rec.Notes,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func (f FieldErrors) add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}
