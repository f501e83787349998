package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/odontox-io/odontox/domains/appointments/be/service"
	"github.com/odontox-io/odontox/platform/go/auth"
	"github.com/odontox-io/odontox/platform/go/authz"
	"github.com/odontox-io/odontox/platform/go/httpjson"
)

// Handler exposes the tenant-scoped appointment endpoints.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("appointments service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the appointment endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireOperation(authz.OpAppointmentRead)).Get("/", h.list)
	r.With(auth.RequireOperation(authz.OpAppointmentWrite)).Post("/", h.create)
	return r
}

type appointmentResponse struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patientId"`
	ProviderID string    `json:"providerId"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
	Status     string    `json:"status"`
	Reason     *string   `json:"reason,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type createAppointmentRequest struct {
	PatientID  string    `json:"patientId"`
	ProviderID string    `json:"providerId"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
	Status     *string   `json:"status,omitempty"`
	Reason     *string   `json:"reason,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	fieldErrors := map[string][]string{}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		fieldErrors["patientId"] = append(fieldErrors["patientId"], "patientId must be a UUID")
	}
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		fieldErrors["providerId"] = append(fieldErrors["providerId"], "providerId must be a UUID")
	}
	if len(fieldErrors) > 0 {
		httpjson.WriteValidationError(w, fieldErrors)
		return
	}

	appointment, err := h.svc.Create(r.Context(), service.CreateInput{
		PatientID:  patientID,
		ProviderID: providerID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Status:     req.Status,
		Reason:     req.Reason,
		Notes:      req.Notes,
	})
	if err != nil {
		h.writeError(w, err, "appointment create failed")
		return
	}

	httpjson.Write(w, http.StatusCreated, mapAppointment(appointment))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	opts := service.ListOptions{}
	if raw := r.URL.Query().Get("patientId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpjson.WriteError(w, http.StatusBadRequest, "patientId must be a UUID")
			return
		}
		opts.PatientID = &parsed
	}

	appointments, err := h.svc.List(r.Context(), opts)
	if err != nil {
		h.writeError(w, err, "appointment list failed")
		return
	}

	out := make([]appointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, mapAppointment(a))
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"appointments": out})
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

func mapAppointment(a service.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:         a.ID.String(),
		PatientID:  a.PatientID.String(),
		ProviderID: a.ProviderID.String(),
		StartAt:    a.StartAt,
		EndAt:      a.EndAt,
		Status:     a.Status,
		Reason:     a.Reason,
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
