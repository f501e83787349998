package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/domains/invoices/be/repo"
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

// Invoice statuses accepted at creation.
var validStatuses = map[string]struct{}{
	"draft":  {},
	"open":   {},
	"paid":   {},
	"void":   {},
	"unpaid": {},
}

// Money amounts travel as decimal strings with at most two fraction digits.
var amountPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// Invoice is the domain view of a billing document.
type Invoice struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	Status    string
	Currency  string
	Total     string
	IssuedAt  *time.Time
	DueAt     *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput carries an invoice creation request.
type CreateInput struct {
	PatientID uuid.UUID
	Status    *string
	Currency  string
	Total     string
	IssuedAt  *time.Time
	DueAt     *time.Time
}

// Service defines the business operations for the invoices domain.
type Service interface {
	Create(ctx context.Context, input CreateInput) (Invoice, error)
	List(ctx context.Context) ([]Invoice, error)
}

type service struct {
	repo repo.Repository
}

// New constructs an invoices Service backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("invoices repository is required")
	}
	return &service{repo: r}
}

func (s *service) Create(ctx context.Context, input CreateInput) (Invoice, error) {
	scope, ok := tenant.FromContext(ctx)
	if !ok {
		return Invoice{}, ErrNoTenantScope
	}

	fieldErrors := FieldErrors{}
	if input.PatientID == uuid.Nil {
		fieldErrors.add("patientId", "patientId is required")
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if len(currency) != 3 {
		fieldErrors.add("currency", "currency must be a 3-letter ISO code")
	}

	total := strings.TrimSpace(input.Total)
	if total == "" {
		fieldErrors.add("total", "total is required")
	} else if !amountPattern.MatchString(total) {
		fieldErrors.add("total", "total must be a non-negative decimal amount")
	}

	status := "draft"
	if input.Status != nil && strings.TrimSpace(*input.Status) != "" {
		status = strings.TrimSpace(*input.Status)
		if _, ok := validStatuses[status]; !ok {
			fieldErrors.add("status", "unsupported status")
		}
	}

	if len(fieldErrors) > 0 {
		return Invoice{}, &ValidationError{Fields: fieldErrors}
	}

	rec, err := s.repo.Create(ctx, scope, persistence.CreateInvoiceParams{
		PatientID: input.PatientID,
		Status:    status,
		Currency:  currency,
		Total:     total,
		IssuedAt:  input.IssuedAt,
		DueAt:     input.DueAt,
	})
	if err != nil {
		return Invoice{}, err
	}
	return mapInvoice(rec), nil
}

func (s *service) List(ctx context.Context) ([]Invoice, error) {
	scope, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, ErrNoTenantScope
	}

	records, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	invoices := make([]Invoice, 0, len(records))
	for _, rec := range records {
		invoices = append(invoices, mapInvoice(rec))
	}
	return invoices, nil
}

func mapInvoice(rec persistence.Invoice) Invoice {
	return Invoice{
		ID:        rec.ID,
		PatientID: rec.PatientID,
		Status:    rec.Status,
		Currency:  rec.Currency,
		Total:     rec.Total,
		IssuedAt:  rec.IssuedAt,
		DueAt:     rec.DueAt,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func (f FieldErrors) add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}
