package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
	"github.com/mayasama5/upe-program-sub001/internal/logger"
)

// GoogleLogin starts the Google OAuth flow. A signup role picked on
// the frontend (estudiante or empresa) rides along in a short-lived
// cookie and only matters if the account does not exist yet.
func (h *Handler) GoogleLogin(c *gin.Context) {
	if role, ok := auth.ParseRole(c.Query("role")); ok && role != auth.RoleAdmin {
		setFlowCookie(c, roleCookieName, string(role))
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state, codeChallenge))
}

// GoogleCallback finishes the flow: exchange the code, verify the ID
// token, materialize the user and hand the frontend a first-party JWT.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid state"})
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"error": errParam,
			"desc":  c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, h.frontendURL+"/login?error="+errParam)
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oauth callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := flowCookie(c, pkceCookieName)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing pkce verifier"})
		return
	}

	identity, err := h.google.ExchangeCode(c.Request.Context(), code, codeVerifier)
	if err != nil {
		c.Redirect(http.StatusFound, h.frontendURL+"/login?error=authentication_failed")
		return
	}

	if role, ok := auth.ParseRole(flowCookie(c, roleCookieName)); ok {
		identity.RequestedRole = role
	}

	principal, err := h.resolver.ResolveProviderIdentity(c.Request.Context(), identity)
	if err != nil {
		logger.Error("failed to resolve user after oauth", map[string]any{
			"subject": identity.SubjectID,
			"error":   err.Error(),
		})
		c.Redirect(http.StatusFound, h.frontendURL+"/login?error=resolution_failed")
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), principal.PersistentUserID)
	if err != nil {
		c.Redirect(http.StatusFound, h.frontendURL+"/login?error=resolution_failed")
		return
	}

	access, err := h.tokens.IssueAccess(user)
	if err != nil {
		c.Redirect(http.StatusFound, h.frontendURL+"/login?error=token_issue_failed")
		return
	}

	logger.Info("oauth login completed", map[string]any{
		"user_id": user.ID,
		"role":    string(user.Role),
	})

	c.Redirect(http.StatusFound, h.frontendURL+"/auth/callback?token="+access)
}
