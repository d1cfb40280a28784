package provider

import (
	"context"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
)

// SessionVerifier validates a provider session token and returns the
// identity facts it asserts. Implementations return facts only and
// must not perform user creation, linking, or session management.
type SessionVerifier interface {
	VerifySession(ctx context.Context, rawToken string) (*auth.Identity, error)
}
