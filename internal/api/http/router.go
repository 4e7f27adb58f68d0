package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/http/handlers"
	"github.com/spec-kit/shop-service/internal/auth"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Orders         *handlers.OrdersHandler
	Products       *handlers.ProductsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes under /api and installs the 404 fallback.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")

	api.Get("/health", cfg.Health.Health)
	api.Get("/health/live", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	api.Get("/products", cfg.Products.List)
	api.Get("/products/:id", cfg.Products.Get)
	api.Post("/products", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Products.Create)

	api.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	orders := api.Group("/orders", cfg.AuthMiddleware.Handle)
	orders.Post("/", cfg.Orders.Create)
	orders.Get("/", cfg.Orders.List)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("route", nil)
	})
}
