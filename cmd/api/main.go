package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/tenantbase/backend/internal/audit"
	"github.com/tenantbase/backend/internal/config"
	"github.com/tenantbase/backend/internal/db"
	apphttp "github.com/tenantbase/backend/internal/http"
	"github.com/tenantbase/backend/internal/http/handlers"
	"github.com/tenantbase/backend/internal/repositories"
	"github.com/tenantbase/backend/internal/services"
	"github.com/tenantbase/backend/internal/session"
	"github.com/tenantbase/backend/internal/tenantid"
	"github.com/tenantbase/backend/internal/uploads"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, cfg.PGMaxConns, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Sessions
	var sessions session.Store
	switch cfg.SessionStore {
	case "redis":
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
	default:
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	// Audit writer probes the audit table shape once at startup.
	aud := audit.NewPGWriter(ctx, pool, log)

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	clientRepo := repositories.NewClientRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Identifier allocation
	allocator := tenantid.NewAllocator(tenantid.CryptoSource{}, tenantRepo, aud, log)

	// Uploads
	storage, err := uploads.NewStorage(cfg.UploadsDir)
	if err != nil {
		log.Fatal("failed to prepare uploads dir", zap.Error(err))
	}

	// Services
	authService := services.NewAuthService(userRepo, sessions, aud, cfg.BcryptCost, log)
	userService := services.NewUserService(userRepo, allocator, aud, cfg.BcryptCost, log)
	clientService := services.NewClientService(clientRepo, allocator, aud, cfg.BcryptCost, log)
	tenantService := services.NewTenantService(tenantRepo, allocator, aud, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg, log)
	userHandler := handlers.NewUserHandler(userService, storage, log)
	clientHandler := handlers.NewClientHandler(clientService, storage, log)
	tenantHandler := handlers.NewTenantHandler(tenantService, log)
	profileHandler := handlers.NewProfileHandler(userService, log)
	auditHandler := handlers.NewAuditHandler(auditRepo, log)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, sessions, aud,
		authHandler, userHandler, clientHandler, tenantHandler, profileHandler, auditHandler)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
