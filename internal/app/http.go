package app

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
	"github.com/mayasama5/upe-program-sub001/internal/auth/handler"
	"github.com/mayasama5/upe-program-sub001/internal/auth/provider"
	"github.com/mayasama5/upe-program-sub001/internal/auth/resolver"
	"github.com/mayasama5/upe-program-sub001/internal/auth/token"
	"github.com/mayasama5/upe-program-sub001/internal/config"
	"github.com/mayasama5/upe-program-sub001/internal/middleware"
	"github.com/mayasama5/upe-program-sub001/internal/store"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	users := store.NewPostgresStore(infra.DB)
	identityResolver := resolver.NewStoreResolver(users)

	tokens := token.NewService(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.RefreshExpiresIn)
	revoked := token.NewRevocationList(infra.Redis.Client)

	providerAudience := cfg.ProviderAudience
	if providerAudience == "" {
		providerAudience = cfg.GoogleClientID
	}
	sessionVerifier, err := provider.NewOIDCSessionVerifier(
		ctx,
		cfg.ProviderIssuer,
		providerAudience,
	)
	if err != nil {
		return nil, nil, err
	}

	googleFlow, err := provider.NewGoogleFlow(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	authHandler := handler.NewHandler(
		users,
		tokens,
		revoked,
		googleFlow,
		identityResolver,
		cfg.FrontendURL,
	)

	authMiddleware := middleware.NewAuthMiddleware(sessionVerifier, tokens, identityResolver)
	limiter := middleware.NewRateLimiter(infra.Redis.Client, cfg.RateLimitMax, cfg.RateLimitWindow)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{cfg.FrontendURL, "http://localhost:3000"}
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(corsCfg))

	// ----------------------------
	// Public Routes
	// ----------------------------

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/auth/google/login", authHandler.GoogleLogin)
	router.GET("/auth/google/callback", authHandler.GoogleCallback)

	authAPI := router.Group("/api/auth")
	authAPI.POST("/register", limiter.Limit(), authHandler.Register)
	authAPI.POST("/login", limiter.Limit(), authHandler.Login)
	authAPI.POST("/refresh", authHandler.Refresh)
	authAPI.POST("/logout", authMiddleware.TokenAuth(false), authHandler.Logout)
	authAPI.GET("/me", authMiddleware.TokenAuth(true), authHandler.Me)

	// ----------------------------
	// Content Routes
	// ----------------------------

	// Browsing is anonymous-friendly: a provider session personalizes
	// the listing when present but is never required.
	router.GET("/api/jobs",
		authMiddleware.SessionAuth(),
		func(c *gin.Context) {
			viewer := "anonymous"
			if p, ok := middleware.PrincipalFromContext(c.Request.Context()); ok {
				viewer = string(p.Role)
			}
			c.JSON(http.StatusOK, gin.H{"jobs": []gin.H{}, "viewer": viewer})
		},
	)

	router.POST("/api/jobs",
		authMiddleware.TokenAuth(true),
		middleware.Gate(
			middleware.RequireRole(auth.RoleCompany),
			middleware.RequireVerified(),
		),
		func(c *gin.Context) {
			c.JSON(http.StatusCreated, gin.H{"status": "created"})
		},
	)

	admin := router.Group("/api/admin")
	admin.Use(
		authMiddleware.TokenAuth(true),
		middleware.Gate(middleware.RequireRole(auth.RoleAdmin)),
	)
	admin.GET("/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"users": []gin.H{}})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if err := infra.Redis.Close(); err != nil {
			return err
		}
		return infra.DB.Close()
	}, nil
}
