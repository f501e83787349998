package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/odontox-io/odontox/domains/providers/be/service"
	"github.com/odontox-io/odontox/platform/go/auth"
	"github.com/odontox-io/odontox/platform/go/authz"
	"github.com/odontox-io/odontox/platform/go/httpjson"
)

// Handler exposes the tenant-scoped provider endpoints.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("providers service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the provider endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireOperation(authz.OpProviderRead)).Get("/", h.list)
	r.With(auth.RequireOperation(authz.OpProviderWrite)).Post("/", h.create)
	return r
}

type providerResponse struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          *string   `json:"email,omitempty"`
	LicenseNumber  *string   `json:"licenseNumber,omitempty"`
	Specialization *string   `json:"specialization,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type createProviderRequest struct {
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          *string `json:"email,omitempty"`
	LicenseNumber  *string `json:"licenseNumber,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProviderRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	provider, err := h.svc.Create(r.Context(), service.CreateInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		LicenseNumber:  req.LicenseNumber,
		Specialization: req.Specialization,
	})
	if err != nil {
		h.writeError(w, err, "provider create failed")
		return
	}

	httpjson.Write(w, http.StatusCreated, mapProvider(provider))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	providers, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err, "provider list failed")
		return
	}

	out := make([]providerResponse, 0, len(providers))
	for _, p := range providers {
		out = append(out, mapProvider(p))
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"providers": out})
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

func mapProvider(p service.Provider) providerResponse {
	return providerResponse{
		ID:             p.ID.String(),
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		LicenseNumber:  p.LicenseNumber,
		Specialization: p.Specialization,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
