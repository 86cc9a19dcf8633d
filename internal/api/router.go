package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskdeck/taskdeck-api/internal/api/handler"
	"github.com/taskdeck/taskdeck-api/internal/api/middleware"
	"github.com/taskdeck/taskdeck-api/internal/core/domain"
	"github.com/taskdeck/taskdeck-api/internal/core/ports"
	"github.com/taskdeck/taskdeck-api/internal/core/service"
	"github.com/taskdeck/taskdeck-api/internal/infrastructure/backend"
	redisstore "github.com/taskdeck/taskdeck-api/internal/infrastructure/db/redis"
	"github.com/taskdeck/taskdeck-api/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(backendClient *backend.Client, db *mongo.Database, rdb *redis.Client, audit ports.AuditSink, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("taskdeck"))

	// --- Dependencies ---
	profileRepo := backend.NewProfileRepository(backendClient)
	taskRepo := backend.NewTaskRepository(backendClient)
	throttle := redisstore.NewLoginThrottle(rdb, 0, 0)

	authService := service.NewAuthService(backendClient, throttle, log)
	adminService := service.NewAdminService(backendClient, profileRepo, audit, log)
	taskService := service.NewTaskService(taskRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(adminService)
	taskHandler := handler.NewTaskHandler(taskService)

	authn := middleware.Authenticate(backendClient, profileRepo, log)

	// --- Auth routes ---
	e.POST("/v1/auth/login", authHandler.Login)

	// --- Admin command endpoint (POST only; other methods get 405) ---
	e.POST("/v1/admin/users", adminHandler.Dispatch, authn, middleware.RequireRole(domain.RoleAdmin))

	// --- Dashboard ---
	e.GET("/v1/tasks", taskHandler.List, authn, middleware.RequireRole(domain.RoleUser, domain.RoleAdmin))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(backendClient, db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
