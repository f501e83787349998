package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/odontox-io/odontox/domains/patients/be/service"
	"github.com/odontox-io/odontox/platform/go/auth"
	"github.com/odontox-io/odontox/platform/go/authz"
	"github.com/odontox-io/odontox/platform/go/httpjson"
)

// Handler exposes the tenant-scoped patient endpoints.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("patients service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the patient endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireOperation(authz.OpPatientRead)).Get("/", h.list)
	r.With(auth.RequireOperation(authz.OpPatientWrite)).Post("/", h.create)
	r.With(auth.RequireOperation(authz.OpPatientRead)).Get("/{patientID}", h.get)
	return r
}

type patientResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type createPatientRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPatientRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	patient, err := h.svc.Create(r.Context(), service.CreateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		h.writeError(w, err, "patient create failed")
		return
	}

	httpjson.Write(w, http.StatusCreated, mapPatient(patient))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		httpjson.WriteError(w, http.StatusNotFound, "patient not found")
		return
	}

	patient, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "patient get failed")
		return
	}

	httpjson.Write(w, http.StatusOK, mapPatient(patient))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	patients, err := h.svc.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err, "patient list failed")
		return
	}

	out := make([]patientResponse, 0, len(patients))
	for _, p := range patients {
		out = append(out, mapPatient(p))
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"patients": out})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, logMsg string) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		httpjson.WriteValidationError(w, validationErr.Fields)
	case errors.Is(err, service.ErrNotFound):
		httpjson.WriteError(w, http.StatusNotFound, "patient not found")
	case errors.Is(err, service.ErrNoTenantScope):
		httpjson.WriteError(w, http.StatusForbidden, "forbidden")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func mapPatient(p service.Patient) patientResponse {
	return patientResponse{
		ID:        p.ID.String(),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
