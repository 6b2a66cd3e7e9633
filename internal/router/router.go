package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/tempo-go-api/internal/config"
	"github.com/noah-isme/tempo-go-api/internal/handler"
	"github.com/noah-isme/tempo-go-api/internal/middleware"
	"github.com/noah-isme/tempo-go-api/internal/models"
	"github.com/noah-isme/tempo-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	ProgressHandler   *handler.ProgressHandler
	CatalogueHandler  *handler.CatalogueHandler
	AuditHandler      *handler.AuditHandler
	JWTMiddleware     fiber.Handler
	HealthChecks      map[string]handler.HealthChecker
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	professor := api.Group("/professor", jwtMiddleware, middleware.RequireRole(models.RoleProfessor))
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(professor)
	}
	if deps.CatalogueHandler != nil {
		deps.CatalogueHandler.RegisterAuthoring(professor)
	}
	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(professor)
	}

	authenticated := middleware.RequireRole(models.RoleProfessor, models.RoleStudent)

	if deps.CatalogueHandler != nil {
		catalogue := api.Group("/catalogue", jwtMiddleware, authenticated)
		deps.CatalogueHandler.Register(catalogue)
	}

	if deps.ProgressHandler != nil {
		students := api.Group("/students", jwtMiddleware, authenticated)
		deps.ProgressHandler.Register(students)
	}

	if deps.SubmissionHandler != nil {
		window := cfg.SubmissionRateWindow
		if window <= 0 {
			window = time.Minute
		}
		submissions := api.Group("/submissions",
			jwtMiddleware,
			middleware.RequireRole(models.RoleStudent),
			middleware.RateLimit("submissions", cfg.SubmissionRateLimit, window),
		)
		deps.SubmissionHandler.Register(submissions)
	}
}
