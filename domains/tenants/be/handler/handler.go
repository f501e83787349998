package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/odontox-io/odontox/domains/tenants/be/service"
	"github.com/odontox-io/odontox/platform/go/auth"
	"github.com/odontox-io/odontox/platform/go/authz"
	"github.com/odontox-io/odontox/platform/go/httpjson"
)

// Handler exposes the platform tenant-registry endpoints.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("tenants service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the registry endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireOperation(authz.OpTenantList)).Get("/", h.list)
	r.With(auth.RequireOperation(authz.OpTenantCreate)).Post("/", h.create)
	return r
}

type tenantResponse struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpjson.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	tenants, err := h.svc.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("tenant list failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]tenantResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, mapTenant(t))
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"tenants": out})
}

type createTenantRequest struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant, err := h.svc.Create(r.Context(), service.CreateInput{Slug: req.Slug, Name: req.Name})
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			httpjson.WriteValidationError(w, validationErr.Fields)
		case errors.Is(err, service.ErrSlugTaken):
			httpjson.WriteError(w, http.StatusConflict, "tenant slug already registered")
		default:
			h.logger.Error("tenant create failed", zap.Error(err))
			httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpjson.Write(w, http.StatusCreated, mapTenant(tenant))
}

func mapTenant(t service.Tenant) tenantResponse {
	return tenantResponse{
		ID:        t.ID.String(),
		Slug:      t.Slug,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
