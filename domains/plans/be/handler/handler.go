package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/odontox-io/odontox/domains/plans/be/service"
	"github.com/odontox-io/odontox/platform/go/auth"
	"github.com/odontox-io/odontox/platform/go/authz"
	"github.com/odontox-io/odontox/platform/go/httpjson"
)

// Handler exposes the platform plan-catalog endpoints.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("plans service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the catalog endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireOperation(authz.OpPlanList)).Get("/", h.list)
	r.With(auth.RequireOperation(authz.OpPlanSync)).Post("/sync", h.sync)
	return r
}

// FeatureRoutes mounts the plan-feature endpoints on a fresh router.
func (h *Handler) FeatureRoutes() chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireOperation(authz.OpPlanFeatureList)).Get("/", h.listFeatures)
	r.With(auth.RequireOperation(authz.OpPlanFeatureCreate)).Post("/", h.createFeature)
	return r
}

type planResponse struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("plan list failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, planResponse{
			ID:        p.ID.String(),
			Key:       p.Key,
			Name:      p.Name,
			Active:    p.Active,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"plans": out})
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Sync(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrCatalogUnavailable) {
			httpjson.WriteError(w, http.StatusServiceUnavailable, "billing catalog not configured")
			return
		}
		h.logger.Error("plan sync failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusBadGateway, "catalog sync failed")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]int{
		"seen":     result.Seen,
		"inserted": result.Inserted,
	})
}

type featureResponse struct {
	ID        string         `json:"id"`
	PlanID    string         `json:"planId"`
	Key       string         `json:"key"`
	Enabled   bool           `json:"enabled"`
	HardLimit *int           `json:"hardLimit,omitempty"`
	SoftLimit *int           `json:"softLimit,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (h *Handler) listFeatures(w http.ResponseWriter, r *http.Request) {
	var planID *uuid.UUID
	if raw := r.URL.Query().Get("planId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpjson.WriteError(w, http.StatusBadRequest, "planId must be a UUID")
			return
		}
		planID = &parsed
	}

	features, err := h.svc.ListFeatures(r.Context(), planID)
	if err != nil {
		h.logger.Error("plan feature list failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]featureResponse, 0, len(features))
	for _, f := range features {
		out = append(out, mapFeature(f))
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"features": out})
}

type createFeatureRequest struct {
	PlanID    string         `json:"planId"`
	Key       string         `json:"key"`
	Enabled   bool           `json:"enabled"`
	HardLimit *int           `json:"hardLimit,omitempty"`
	SoftLimit *int           `json:"softLimit,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (h *Handler) createFeature(w http.ResponseWriter, r *http.Request) {
	var req createFeatureRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		httpjson.WriteValidationError(w, map[string][]string{"planId": {"planId must be a UUID"}})
		return
	}

	feature, err := h.svc.CreateFeature(r.Context(), service.CreateFeatureInput{
		PlanID:    planID,
		Key:       req.Key,
		Enabled:   req.Enabled,
		HardLimit: req.HardLimit,
		SoftLimit: req.SoftLimit,
		Metadata:  req.Metadata,
	})
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			httpjson.WriteValidationError(w, validationErr.Fields)
			return
		}
		h.logger.Error("plan feature create failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusCreated, mapFeature(feature))
}

func mapFeature(f service.Feature) featureResponse {
	return featureResponse{
		ID:        f.ID.String(),
		PlanID:    f.PlanID.String(),
		Key:       f.Key,
		Enabled:   f.Enabled,
		HardLimit: f.HardLimit,
		SoftLimit: f.SoftLimit,
		Metadata:  f.Metadata,
		CreatedAt: f.CreatedAt,
	}
}
