package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/returnloop/pickup-system/internal/api/handler"
	"github.com/returnloop/pickup-system/internal/api/middleware"
	"github.com/returnloop/pickup-system/internal/core/domain"
	"github.com/returnloop/pickup-system/internal/core/ports"
	"github.com/returnloop/pickup-system/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	pickupService ports.PickupService,
	authService ports.AuthService,
	jwtSecret string,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("pickup"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	pickupHandler := handler.NewPickupHandler(pickupService)
	authMiddleware := middleware.Auth(jwtSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability / docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Fee quote (no auth: used by the scheduling form before login) ---
	e.POST("/v1/estimate", pickupHandler.Estimate)

	// --- Lifecycle operations ---
	v1 := e.Group("/v1", authMiddleware)

	v1.POST("/pickups", pickupHandler.Create, middleware.RBAC(domain.RoleCustomer))
	v1.GET("/pickups", pickupHandler.CustomerView, middleware.RBAC(domain.RoleCustomer))
	v1.GET("/pickups/:id", pickupHandler.Get)
	v1.GET("/pickups/:id/custody", pickupHandler.Custody)
	v1.POST("/pickups/:id/claim", pickupHandler.Claim, middleware.RBAC(domain.RoleDriver))
	v1.POST("/pickups/:id/advance", pickupHandler.Advance, middleware.RBAC(domain.RoleDriver))
	v1.POST("/pickups/:id/cancel", pickupHandler.Cancel, middleware.RBAC(domain.RoleCustomer))

	v1.GET("/driver/pickups", pickupHandler.DriverView, middleware.RBAC(domain.RoleDriver))
	v1.GET("/admin/pickups", pickupHandler.AdminView, middleware.RBAC(domain.RoleAdmin))

	return e
}
