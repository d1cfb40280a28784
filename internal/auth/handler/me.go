package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mayasama5/upe-program-sub001/internal/middleware"
)

// Me returns the full profile behind the resolved principal.
func (h *Handler) Me(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Not authenticated",
			"message": "No active session found",
			"code":    "NOT_AUTHENTICATED",
		})
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), principal.PersistentUserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}
