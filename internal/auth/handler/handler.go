package handler

import (
	"github.com/mayasama5/upe-program-sub001/internal/auth/provider"
	"github.com/mayasama5/upe-program-sub001/internal/auth/resolver"
	"github.com/mayasama5/upe-program-sub001/internal/auth/token"
	"github.com/mayasama5/upe-program-sub001/internal/store"
)

// Handler serves the first-party account endpoints: registration,
// login, token refresh, logout, the current-user endpoint and the
// Google OAuth flow.
type Handler struct {
	users       store.UserStore
	tokens      *token.Service
	revoked     token.Revoker
	google      *provider.GoogleFlow
	resolver    resolver.Resolver
	frontendURL string
}

func NewHandler(
	users store.UserStore,
	tokens *token.Service,
	revoked token.Revoker,
	google *provider.GoogleFlow,
	res resolver.Resolver,
	frontendURL string,
) *Handler {
	return &Handler{
		users:       users,
		tokens:      tokens,
		revoked:     revoked,
		google:      google,
		resolver:    res,
		frontendURL: frontendURL,
	}
}
