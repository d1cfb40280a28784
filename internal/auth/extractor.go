package auth

import (
	"net/http"
	"strings"
)

// SessionCookieName is the cookie the identity provider sets on the
// application domain.
const SessionCookieName = "__session"

// CredentialKind distinguishes where a raw credential came from.
type CredentialKind string

const (
	CredentialCookie CredentialKind = "cookie"
	CredentialBearer CredentialKind = "bearer"
)

// RawCredential is an unverified credential pulled off a request.
type RawCredential struct {
	Kind  CredentialKind
	Value string
}

// ExtractCredential pulls a credential out of the request: the session
// cookie first, the Authorization header as fallback. It never fails;
// a request with neither yields nil, which downstream stages must
// treat as anonymous, not as an error.
func ExtractCredential(r *http.Request) *RawCredential {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return &RawCredential{Kind: CredentialCookie, Value: cookie.Value}
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return &RawCredential{Kind: CredentialBearer, Value: token}
	}

	return nil
}
