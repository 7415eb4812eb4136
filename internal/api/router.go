package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/studyflow/accounts-api/internal/api/handler"
	"github.com/studyflow/accounts-api/internal/api/middleware"
	"github.com/studyflow/accounts-api/internal/core/domain"
	"github.com/studyflow/accounts-api/internal/core/ports"
	"github.com/studyflow/accounts-api/internal/core/service"
	"github.com/studyflow/accounts-api/internal/infrastructure/config"
	mongostore "github.com/studyflow/accounts-api/internal/infrastructure/db/mongo"
	redisstore "github.com/studyflow/accounts-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, notifier ports.Notifier, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	refreshRepo := mongostore.NewRefreshTokenRepository(db)
	resetRepo := mongostore.NewResetTokenRepository(db)
	resetLimiter := redisstore.NewResetLimiter(rdb)

	hasher := service.NewBcryptHasher(0)
	issuer := service.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	refreshTokens := service.NewRefreshTokenManager(refreshRepo, cfg.RefreshTokenTTL)
	resetTokens := service.NewResetTokenManager(resetRepo, issuer.IssueResetToken, cfg.ResetTokenTTL)

	authService := service.NewAuthService(userRepo, hasher, issuer, refreshTokens, resetTokens, notifier, resetLimiter, cfg.FrontendURL, log)
	userService := service.NewUserService(userRepo, hasher, issuer, notifier, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	healthHandler := handler.NewHealthHandler(db, rdb)

	authRequired := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.GET("/auth/validate-token", authHandler.ValidateToken)
	e.PUT("/auth/change-password", authHandler.ChangePassword, authRequired)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.PUT("/auth/reset-password", authHandler.ResetPassword)
	e.GET("/auth/federated/callback", authHandler.FederatedCallback)

	// --- Account routes ---
	e.POST("/users", userHandler.Register)
	e.GET("/users/verify", userHandler.Verify)
	e.GET("/users", userHandler.List, authRequired, adminOnly)
	e.GET("/users/:id", userHandler.Get, authRequired, adminOnly)
	e.PATCH("/users", userHandler.UpdateProfile, authRequired)
	e.PATCH("/users/:id/role", userHandler.UpdateRole, authRequired, adminOnly)
	e.DELETE("/users/:id", userHandler.Delete, authRequired, adminOnly)

	// --- Relationship routes (operate on the authenticated user) ---
	me := e.Group("/me", authRequired)
	me.GET("/subjects", userHandler.SubscribedSubjects)
	me.POST("/subjects/:subjectId", userHandler.SubscribeSubject)
	me.DELETE("/subjects/:subjectId", userHandler.UnsubscribeSubject)
	me.GET("/journeys", userHandler.SubscribedJourneys)
	me.POST("/journeys/:journeyId", userHandler.SubscribeJourney)
	me.DELETE("/journeys/:journeyId", userHandler.UnsubscribeJourney)
	me.GET("/trails", userHandler.CompletedTrails)
	me.POST("/trails/:trailId/complete", userHandler.CompleteTrail)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	return e
}
