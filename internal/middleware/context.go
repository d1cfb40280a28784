package middleware

import (
	"context"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
)

// unexported, collision-proof context key
type principalContextKeyType struct{}

var principalKey = principalContextKeyType{}

// WithPrincipal returns a context carrying the resolved principal.
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the resolved principal. ok is false
// for anonymous requests; handlers must treat that as a valid state,
// not an error.
func PrincipalFromContext(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*auth.Principal)
	return p, ok && p != nil
}
