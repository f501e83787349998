package tenant

import (
	"context"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/platform/go/authz"
)

// Scope is the request-local tenant binding. It is attached to the context by
// middleware once session claims have been validated, and it is the only value
// the persistence layer accepts for tenant-scoped access. It must never be
// cached or reused across requests.
type Scope struct {
	TenantID    uuid.UUID
	PrincipalID uuid.UUID
	Role        authz.Role
}

type ctxKey struct{}

// WithScope returns a derived context carrying the tenant Scope.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, scope)
}

// FromContext extracts the tenant Scope and a boolean indicating presence.
func FromContext(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(ctxKey{}).(Scope)
	return scope, ok
}
