package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-results-api/internal/config"
	"github.com/noah-isme/gema-results-api/internal/handler"
	"github.com/noah-isme/gema-results-api/internal/middleware"
	"github.com/noah-isme/gema-results-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	TeacherHandler        *handler.TeacherHandler
	AdminResultsHandler   *handler.AdminResultsHandler
	AdminAnalyticsHandler *handler.AdminAnalyticsHandler
	AdminActivityHandler  *handler.AdminActivityHandler
	StudentRecordHandler  *handler.StudentRecordHandler
	JWTMiddleware         fiber.Handler
	Database              handler.Pinger
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Database))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.TeacherHandler != nil {
		teacher := api.Group("/teacher", jwtMiddleware, middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin))
		teacher.Use("/marks", middleware.RateLimit("marks", cfg.RateLimitMax, rateWindow(cfg)))
		deps.TeacherHandler.Register(teacher)
	}

	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(middleware.RoleAdmin))
	if deps.AdminResultsHandler != nil {
		deps.AdminResultsHandler.Register(admin)
	}
	if deps.AdminAnalyticsHandler != nil {
		deps.AdminAnalyticsHandler.Register(admin.Group("/analytics"))
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/activity"))
	}

	if deps.StudentRecordHandler != nil {
		student := api.Group("/student", jwtMiddleware, middleware.RequireRole(middleware.RoleStudent))
		deps.StudentRecordHandler.Register(student)
	}
}

func rateWindow(cfg config.Config) time.Duration {
	if cfg.RateLimitWindow <= 0 {
		return time.Minute
	}
	return cfg.RateLimitWindow
}
