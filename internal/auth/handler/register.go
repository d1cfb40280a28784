package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
	"github.com/mayasama5/upe-program-sub001/internal/store"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
}

// Register creates a local account. This is the only way local-JWT
// subjects come into existence; the token path never provisions.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	role := auth.RoleStudent
	if req.Role != "" {
		parsed, ok := auth.ParseRole(req.Role)
		if !ok || parsed == auth.RoleAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
		role = parsed
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := &store.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		Role:         role,
		PasswordHash: hash,
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	h.respondWithTokens(c, http.StatusCreated, user)
}

func (h *Handler) respondWithTokens(c *gin.Context, status int, user *store.User) {
	access, err := h.tokens.IssueAccess(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	refresh, err := h.tokens.IssueRefresh(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(status, gin.H{
		"token":         access,
		"refresh_token": refresh,
		"user":          userResponse(user),
	})
}

func userResponse(u *store.User) gin.H {
	return gin.H{
		"id":            u.ID,
		"email":         u.Email,
		"name":          u.Name,
		"role":          u.Role,
		"is_verified":   u.IsVerified,
		"picture":       u.Picture,
		"bio":           u.Bio,
		"skills":        u.Skills,
		"github_url":    u.GithubURL,
		"linkedin_url":  u.LinkedinURL,
		"portfolio_url": u.PortfolioURL,
		"company_name":  u.CompanyName,
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
	}
}
