package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/platform/go/authz"
)

// Claims is the immutable authenticated triple carried by a session. It is
// derived once at login from the membership resolved for the principal and is
// never re-read from the database mid-session.
type Claims struct {
	PrincipalID uuid.UUID
	TenantID    uuid.UUID
	Role        authz.Role
}

type ctxKey struct{}

// WithClaims stores validated session claims on the context.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

// ClaimsFromContext extracts session claims and a boolean indicating presence.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(Claims)
	return claims, ok
}
