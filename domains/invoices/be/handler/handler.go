package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/odontox-io/odontox/domains/invoices/be/service"
	"github.com/odontox-io/odontox/platform/go/auth"
	"github.com/odontox-io/odontox/platform/go/authz"
	"github.com/odontox-io/odontox/platform/go/httpjson"
)

// Handler exposes the tenant-scoped invoice endpoints.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("invoices service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the invoice endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireOperation(authz.OpInvoiceRead)).Get("/", h.list)
	r.With(auth.RequireOperation(authz.OpInvoiceWrite)).Post("/", h.create)
	return r
}

type invoiceResponse struct {
	ID        string     `json:"id"`
	PatientID string     `json:"patientId"`
	Status    string     `json:"status"`
	Currency  string     `json:"currency"`
	Total     string     `json:"total"`
	IssuedAt  *time.Time `json:"issuedAt,omitempty"`
	DueAt     *time.Time `json:"dueAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type createInvoiceRequest struct {
	PatientID string     `json:"patientId"`
	Status    *string    `json:"status,omitempty"`
	Currency  string     `json:"currency"`
	Total     string     `json:"total"`
	IssuedAt  *time.Time `json:"issuedAt,omitempty"`
	DueAt     *time.Time `json:"dueAt,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		httpjson.WriteValidationError(w, map[string][]string{"patientId": {"patientId must be a UUID"}})
		return
	}

	invoice, err := h.svc.Create(r.Context(), service.CreateInput{
		PatientID: patientID,
		Status:    req.Status,
		Currency:  req.Currency,
		Total:     req.Total,
		IssuedAt:  req.IssuedAt,
		DueAt:     req.DueAt,
	})
	if err != nil {
		h.writeError(w, err, "invoice create failed")
		return
	}

	httpjson.Write(w, http.StatusCreated, mapInvoice(invoice))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err, "invoice list failed")
		return
	}

	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, mapInvoice(inv))
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"invoices": out})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, logMsg string) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		httpjson.WriteValidationError(w, validationErr.Fields)
	case errors.Is(err, service.ErrNoTenantScope):
		httpjson.WriteError(w, http.StatusForbidden, "forbidden")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func mapInvoice(inv service.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:        inv.ID.String(),
		PatientID: inv.PatientID.String(),
		Status:    inv.Status,
		Currency:  inv.Currency,
		Total:     inv.Total,
		IssuedAt:  inv.IssuedAt,
		DueAt:     inv.DueAt,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}
