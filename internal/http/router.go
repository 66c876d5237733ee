package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/tenantbase/backend/internal/audit"
	"github.com/tenantbase/backend/internal/config"
	"github.com/tenantbase/backend/internal/http/handlers"
	"github.com/tenantbase/backend/internal/middleware"
	"github.com/tenantbase/backend/internal/session"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	sessions session.Store,
	aud audit.Writer,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	clientHandler *handlers.ClientHandler,
	tenantHandler *handlers.TenantHandler,
	profileHandler *handlers.ProfileHandler,
	auditHandler *handlers.AuditHandler,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Request-ID",
		AllowCredentials: false,
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))
	app.Use(middleware.ErrorAudit(aud))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Uploaded photos
	app.Static("/uploads", cfg.UploadsDir)

	api := app.Group("/api")

	// Auth (public; rate-limited before the credential check runs)
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute, log))
	api.Post("/auth/login", authHandler.Login)
	api.Get("/auth/logout", middleware.OptionalSession(sessions, cfg), authHandler.Logout)
	api.Post("/auth/logout", middleware.OptionalSession(sessions, cfg), authHandler.Logout)

	// Reachable without a session for the first-login setup flow; the
	// service rejects any other anonymous change.
	api.Patch("/users/:id/password", middleware.OptionalSession(sessions, cfg), authHandler.ChangePassword)

	// Protected endpoints
	protected := api.Group("", middleware.SessionAuth(sessions, aud, cfg, log))

	protected.Get("/profile", profileHandler.Get)

	// Users
	protected.Get("/users", userHandler.List)
	protected.Get("/users/me", userHandler.Me)
	protected.Get("/users/:id", userHandler.Get)
	protected.Post("/users", userHandler.Create)
	protected.Put("/users/:id", userHandler.Update)
	protected.Delete("/users/:id", userHandler.Delete)

	// Clients
	protected.Get("/clients", clientHandler.List)
	protected.Get("/clients/:id", clientHandler.Get)
	protected.Post("/clients", clientHandler.Create)
	protected.Put("/clients/:id", clientHandler.Update)

	// Tenants
	protected.Get("/tenants", tenantHandler.List)
	protected.Get("/tenants/:id", tenantHandler.Get)
	protected.Post("/tenants", tenantHandler.Create)
	protected.Put("/tenants/:id", tenantHandler.Update)

	// Audit trail (read-only)
	protected.Get("/audit", auditHandler.ListRecent)
}
