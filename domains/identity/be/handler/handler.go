package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/odontox-io/odontox/domains/identity/be/service"
	"github.com/odontox-io/odontox/platform/go/auth"
	"github.com/odontox-io/odontox/platform/go/httpjson"
)

// Handler exposes the public authentication endpoints.
type Handler struct {
	svc    service.Service
	issuer *auth.SessionIssuer
	logger *zap.Logger
}

// New constructs the identity HTTP handler.
func New(svc service.Service, issuer *auth.SessionIssuer, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("identity service is required")
	}
	if issuer == nil {
		panic("session issuer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, issuer: issuer, logger: logger}
}

// Routes mounts the auth endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.Post("/signup", h.signup)
	r.Post("/verify/request", h.requestVerification)
	r.Get("/verify/confirm", h.confirmVerification)
	return r
}

type loginRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	TenantSlug *string `json:"tenantSlug,omitempty"`
}

type loginResponse struct {
	Token       string `json:"token"`
	ExpiresIn   int64  `json:"expiresIn"`
	PrincipalID string `json:"principalId"`
	TenantID    string `json:"tenantId"`
	Role        string `json:"role"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims, err := h.svc.Authenticate(r.Context(), service.AuthenticateInput{
		Email:      req.Email,
		Password:   req.Password,
		TenantSlug: req.TenantSlug,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpjson.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, service.ErrNoMembership):
			httpjson.WriteError(w, http.StatusUnauthorized, "no organization membership")
		case errors.Is(err, service.ErrMultipleMemberships):
			httpjson.WriteError(w, http.StatusBadRequest, "account belongs to multiple organizations, tenantSlug is required")
		default:
			h.logger.Error("login failed", zap.Error(err))
			httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	token, err := h.issuer.Issue(claims, time.Now())
	if err != nil {
		h.logger.Error("session issue failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, loginResponse{
		Token:       token,
		ExpiresIn:   int64(h.issuer.SessionTTL().Seconds()),
		PrincipalID: claims.PrincipalID.String(),
		TenantID:    claims.TenantID.String(),
		Role:        string(claims.Role),
	})
}

type signupRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Name       *string `json:"name,omitempty"`
	Role       *string `json:"role,omitempty"`
	TenantSlug *string `json:"tenantSlug,omitempty"`
}

type signupResponse struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Signup(r.Context(), service.SignupInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Role:       req.Role,
		TenantSlug: req.TenantSlug,
	})
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			httpjson.WriteValidationError(w, validationErr.Fields)
		case errors.Is(err, service.ErrEmailTaken):
			httpjson.WriteError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, service.ErrTenantNotFound):
			httpjson.WriteError(w, http.StatusNotFound, "tenant not found")
		default:
			h.logger.Error("signup failed", zap.Error(err))
			httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpjson.Write(w, http.StatusCreated, signupResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
	})
}

type verifyRequestBody struct {
	Email string `json:"email"`
}

func (h *Handler) requestVerification(w http.ResponseWriter, r *http.Request) {
	var req verifyRequestBody
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.RequestVerification(r.Context(), req.Email); err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			httpjson.WriteValidationError(w, validationErr.Fields)
			return
		}
		h.logger.Error("verification request failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Always the same acknowledgment so the endpoint cannot be probed for
	// registered addresses.
	httpjson.Write(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) confirmVerification(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	err := h.svc.ConfirmVerification(r.Context(), query.Get("email"), query.Get("token"))
	if err != nil && !errors.Is(err, service.ErrTokenInvalid) {
		h.logger.Error("verification confirm failed", zap.Error(err))
	}

	// Invalid or expired tokens land on the same page as successful ones.
	http.Redirect(w, r, "/login", http.StatusFound)
}
