package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	platformauth "github.com/odontox-io/odontox/platform/go/auth"
	"github.com/odontox-io/odontox/platform/go/authz"
	"github.com/odontox-io/odontox/platform/go/tenant"
)

func TestWithTenantScopeAttachesScope(t *testing.T) {
	t.Parallel()

	claims := platformauth.Claims{
		PrincipalID: uuid.New(),
		TenantID:    uuid.New(),
		Role:        authz.RoleReception,
	}

	var captured tenant.Scope
	var present bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, present = tenant.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req = req.WithContext(platformauth.WithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()

	WithTenantScope()(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, present)
	require.Equal(t, claims.TenantID, captured.TenantID)
	require.Equal(t, claims.PrincipalID, captured.PrincipalID)
	require.Equal(t, claims.Role, captured.Role)
}

func TestWithTenantScopeWithoutClaims(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without claims")
	})

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	rec := httptest.NewRecorder()

	WithTenantScope()(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWithTenantScopeNilTenant(t *testing.T) {
	t.Parallel()

	claims := platformauth.Claims{
		PrincipalID: uuid.New(),
		TenantID:    uuid.Nil,
		Role:        authz.RoleSuperAdmin,
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a tenant binding")
	})

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req = req.WithContext(platformauth.WithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()

	WithTenantScope()(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}
