package auth

// Role is the access level a user holds on the platform.
type Role string

const (
	RoleStudent Role = "estudiante"
	RoleCompany Role = "empresa"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a raw role claim to a known role. Unknown values
// resolve to ("", false) and must be treated as no claim at all.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleStudent, RoleCompany, RoleAdmin:
		return Role(raw), true
	}
	return "", false
}

// Principal is the resolved caller for one request. It is built fresh
// per request and never persisted; only its backing user record is.
type Principal struct {
	SubjectID        string // id asserted by the trust domain that authenticated the request
	PersistentUserID string // stable local user id, may differ from SubjectID
	Email            string
	DisplayName      string
	Role             Role
	Verified         bool
}

// Identity holds the verified facts a trust domain asserts about a
// subject. It contains facts only, no decisions.
type Identity struct {
	SubjectID     string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
	Role          Role // empty when the trust domain made no role claim

	// RequestedRole is the role the user picked when starting a signup
	// flow. It seeds first-sight provisioning only; unlike Role it
	// never overwrites an existing record.
	RequestedRole Role
}
