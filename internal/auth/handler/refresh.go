package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mayasama5/upe-program-sub001/internal/auth/token"
	"github.com/mayasama5/upe-program-sub001/internal/store"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates a refresh token: the presented token is revoked and
// a fresh pair is issued against the current user record, so role or
// verification changes take effect immediately.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	claims, err := h.tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Token expired",
				"message": "Your session has expired, please log in again",
				"code":    "TOKEN_EXPIRED",
			})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Token invalid",
			"message": "The provided token could not be verified",
			"code":    "TOKEN_INVALID",
		})
		return
	}

	revoked, err := h.revoked.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify token"})
		return
	}
	if revoked {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Token invalid",
			"message": "This token has been revoked",
			"code":    "TOKEN_INVALID",
		})
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "User not found",
				"message": "No account exists for this token",
				"code":    "NOT_AUTHENTICATED",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	if err := h.revoked.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate token"})
		return
	}

	h.respondWithTokens(c, http.StatusOK, user)
}

// Logout revokes the presented refresh token. It is idempotent: an
// absent, expired or already-revoked token still yields 204.
func (h *Handler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		if claims, err := h.tokens.VerifyRefresh(req.RefreshToken); err == nil {
			_ = h.revoked.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time)
		}
	}

	c.Status(http.StatusNoContent)
}
