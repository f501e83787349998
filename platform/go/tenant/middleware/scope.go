package middleware

import (
	"net/http"

	"github.com/google/uuid"

	platformauth "github.com/odontox-io/odontox/platform/go/auth"
	"github.com/odontox-io/odontox/platform/go/httpjson"
	"github.com/odontox-io/odontox/platform/go/tenant"
)

// WithTenantScope binds the tenant id from the validated session claims to the
// request context as the active tenant Scope. Tenant-scoped routes must run
// behind this middleware; a session without a resolved tenant cannot reach
// tenant data.
func WithTenantScope() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := platformauth.ClaimsFromContext(r.Context())
			if !ok {
				httpjson.WriteError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			if claims.TenantID == uuid.Nil {
				httpjson.WriteError(w, http.StatusForbidden, "forbidden")
				return
			}

			scope := tenant.Scope{
				TenantID:    claims.TenantID,
				PrincipalID: claims.PrincipalID,
				Role:        claims.Role,
			}

			next.ServeHTTP(w, r.WithContext(tenant.WithScope(r.Context(), scope)))
		})
	}
}
