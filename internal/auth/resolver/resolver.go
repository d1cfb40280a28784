package resolver

import (
	"context"
	"errors"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
)

// ErrUserNotFound is returned on the local path when a verified
// subject has no backing record. Local accounts are created through
// the explicit registration flow, never on the fly.
var ErrUserNotFound = errors.New("resolver: user not found")

// Resolver maps a verified subject to a Principal backed by a durable
// user record. It is the ONLY place where identity-to-user mapping
// logic lives.
type Resolver interface {
	// ResolveProviderIdentity materializes a record for a
	// provider-verified identity, creating one on first sight and
	// reconciling role drift toward the provider's claim.
	ResolveProviderIdentity(ctx context.Context, identity *auth.Identity) (*auth.Principal, error)

	// ResolveLocalSubject looks up the record behind a first-party JWT
	// subject. No provisioning happens on this path.
	ResolveLocalSubject(ctx context.Context, subjectID string) (*auth.Principal, error)
}
