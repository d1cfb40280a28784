package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
)

// GateError is the outcome of a failed guard. It is the only way this
// subsystem terminates a request with an error status.
type GateError struct {
	Status       int
	Error        string
	Message      string
	Code         string
	AllowedRoles []auth.Role
}

// Guard is a pure predicate over the resolved principal. A nil
// principal means the request is anonymous. Guards must not mutate
// the principal or the user record.
type Guard func(p *auth.Principal) *GateError

func notAuthenticated() *GateError {
	return &GateError{
		Status:  http.StatusUnauthorized,
		Error:   "Authentication required",
		Message: "You must be logged in to access this resource",
		Code:    "NOT_AUTHENTICATED",
	}
}

// RequireAuthenticated passes iff a principal is attached.
func RequireAuthenticated() Guard {
	return func(p *auth.Principal) *GateError {
		if p == nil {
			return notAuthenticated()
		}
		return nil
	}
}

// RequireRole passes iff the principal holds one of the allowed roles.
func RequireRole(allowed ...auth.Role) Guard {
	return func(p *auth.Principal) *GateError {
		if p == nil {
			return notAuthenticated()
		}
		for _, role := range allowed {
			if p.Role == role {
				return nil
			}
		}
		names := make([]string, len(allowed))
		for i, role := range allowed {
			names[i] = string(role)
		}
		return &GateError{
			Status:       http.StatusForbidden,
			Error:        "Role not permitted",
			Message:      "Allowed roles: " + strings.Join(names, ", "),
			Code:         "ROLE_NOT_PERMITTED",
			AllowedRoles: allowed,
		}
	}
}

// RequireVerified passes iff the principal's account is verified.
func RequireVerified() Guard {
	return func(p *auth.Principal) *GateError {
		if p == nil {
			return notAuthenticated()
		}
		if !p.Verified {
			return &GateError{
				Status:  http.StatusForbidden,
				Error:   "Account not verified",
				Message: "Please verify your account to access this resource",
				Code:    "NOT_VERIFIED",
			}
		}
		return nil
	}
}

// Gate composes guards into route middleware. Guards run strictly in
// declared order and short-circuit on the first failure.
func Gate(guards ...Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := PrincipalFromContext(c.Request.Context())
		for _, guard := range guards {
			if ge := guard(p); ge != nil {
				body := gin.H{
					"error":   ge.Error,
					"message": ge.Message,
					"code":    ge.Code,
				}
				if len(ge.AllowedRoles) > 0 {
					body["allowed_roles"] = ge.AllowedRoles
				}
				c.AbortWithStatusJSON(ge.Status, body)
				return
			}
		}
		c.Next()
	}
}
