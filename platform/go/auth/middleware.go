package auth

import (
	"net/http"
	"strings"

	"github.com/odontox-io/odontox/platform/go/authz"
	"github.com/odontox-io/odontox/platform/go/httpjson"
)

// ExtractBearerToken pulls the bearer token from the Authorization header.
func ExtractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	const prefix = "Bearer "
	// Case-insensitive prefix match.
	if len(authHeader) < len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return "", false
	}

	return strings.TrimSpace(authHeader[len(prefix):]), true
}

// RequireSession validates the session token on every request and stores the
// extracted claims on the context. Missing, malformed or expired sessions are
// rejected with 401.
func RequireSession(issuer *SessionIssuer) func(http.Handler) http.Handler {
	if issuer == nil {
		panic("auth.RequireSession: issuer is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, found := ExtractBearerToken(r)
			if !found {
				httpjson.WriteError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			claims, err := issuer.Validate(token)
			if err != nil {
				httpjson.WriteError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireOperation gates a route on the authorization table. It runs after
// RequireSession and before any tenant-scoped data access: 401 without claims,
// 403 when the role is not allowed to invoke the operation.
func RequireOperation(op authz.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				httpjson.WriteError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			if !authz.Allowed(claims.Role, op) {
				httpjson.WriteError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
