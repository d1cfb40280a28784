package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
	"github.com/mayasama5/upe-program-sub001/internal/auth/provider"
	"github.com/mayasama5/upe-program-sub001/internal/auth/resolver"
	"github.com/mayasama5/upe-program-sub001/internal/auth/token"
	"github.com/mayasama5/upe-program-sub001/internal/logger"
)

// AuthMiddleware resolves the caller's identity for each request.
// Routes are statically bound to one trust domain: SessionAuth for
// provider session tokens, TokenAuth for first-party JWTs.
type AuthMiddleware struct {
	sessions provider.SessionVerifier
	tokens   *token.Service
	resolver resolver.Resolver
}

func NewAuthMiddleware(
	sessions provider.SessionVerifier,
	tokens *token.Service,
	res resolver.Resolver,
) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		tokens:   tokens,
		resolver: res,
	}
}

func attach(c *gin.Context, p *auth.Principal) {
	c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
}

// SessionAuth resolves the provider path. Every failure here —
// absent credential, bad token, provider trouble, storage trouble —
// degrades the request to anonymous. Routes that require a user
// reject the anonymous principal at the gate instead.
func (a *AuthMiddleware) SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := auth.ExtractCredential(c.Request)
		if cred == nil {
			c.Next()
			return
		}

		identity, err := a.sessions.VerifySession(c.Request.Context(), cred.Value)
		if err != nil {
			logger.Warn("session verification failed, continuing as anonymous", map[string]any{
				"source": string(cred.Kind),
				"error":  err.Error(),
			})
			c.Next()
			return
		}

		principal, err := a.resolver.ResolveProviderIdentity(c.Request.Context(), identity)
		if err != nil {
			logger.Error("identity materialization failed, continuing as anonymous", map[string]any{
				"subject": identity.SubjectID,
				"error":   err.Error(),
			})
			c.Next()
			return
		}

		attach(c, principal)
		c.Next()
	}
}

// TokenAuth resolves the local-JWT path. On mandatory routes a bad
// token terminates the request with a reason code the client can act
// on; on optional routes it degrades to anonymous.
func (a *AuthMiddleware) TokenAuth(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := auth.ExtractCredential(c.Request)
		if cred == nil {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "Authentication required",
					"message": "You must be logged in to access this resource",
					"code":    "NOT_AUTHENTICATED",
				})
				return
			}
			c.Next()
			return
		}

		claims, err := a.tokens.Verify(cred.Value)
		if err != nil {
			if !required {
				c.Next()
				return
			}
			if errors.Is(err, token.ErrExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "Token expired",
					"message": "Your session has expired, please log in again",
					"code":    "TOKEN_EXPIRED",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Token invalid",
				"message": "The provided token could not be verified",
				"code":    "TOKEN_INVALID",
			})
			return
		}

		principal, err := a.resolver.ResolveLocalSubject(c.Request.Context(), claims.Subject)
		if err != nil {
			if !required {
				if !errors.Is(err, resolver.ErrUserNotFound) {
					logger.Error("local subject lookup failed, continuing as anonymous", map[string]any{
						"subject": claims.Subject,
						"error":   err.Error(),
					})
				}
				c.Next()
				return
			}
			if errors.Is(err, resolver.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "User not found",
					"message": "No account exists for this token",
					"code":    "NOT_AUTHENTICATED",
				})
				return
			}
			logger.Error("local subject lookup failed", map[string]any{
				"subject": claims.Subject,
				"error":   err.Error(),
			})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication failed",
				"message": "Could not resolve the account for this token",
				"code":    "NOT_AUTHENTICATED",
			})
			return
		}

		attach(c, principal)
		c.Next()
	}
}
