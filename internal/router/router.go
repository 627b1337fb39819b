package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-progression/internal/config"
	"github.com/noah-isme/gema-progression/internal/handler"
	"github.com/noah-isme/gema-progression/internal/middleware"
	"github.com/noah-isme/gema-progression/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProgressionHandler      *handler.ProgressionHandler
	SpecializationHandler   *handler.SpecializationHandler
	ShopHandler             *handler.ShopHandler
	RankingHandler          *handler.RankingHandler
	NotificationHandler     *handler.NotificationHandler
	AdminProgressionHandler *handler.AdminProgressionHandler
	SeedHandler             *handler.SeedHandler
	JWTMiddleware           fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group(middleware.APIPrefix, jwtMiddleware, func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// A valid token without a subject claim carries no student identity.
	api.Use(middleware.WithAuth(func(c *fiber.Ctx) error { return c.Next() }, middleware.AuthOptions{
		Role:        middleware.AuthRoleAny,
		RequireUser: true,
	}))
	staffOnly := middleware.RequireRole("admin", "teacher", "system")

	if deps.ProgressionHandler != nil {
		deps.ProgressionHandler.Register(api)
	}
	if deps.SpecializationHandler != nil {
		deps.SpecializationHandler.Register(api)
	}
	if deps.ShopHandler != nil {
		deps.ShopHandler.Register(api.Group("/shop"))
	}
	if deps.RankingHandler != nil {
		deps.RankingHandler.Register(api.Group("/rankings"))
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications"))
	}
	if deps.AdminProgressionHandler != nil {
		deps.AdminProgressionHandler.Register(api, staffOnly)
	}
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/admin"), staffOnly)
	}
}
