package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/kodelab-api/internal/config"
	"github.com/noah-isme/kodelab-api/internal/handler"
	"github.com/noah-isme/kodelab-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	SessionHandler    *handler.SessionHandler
	TaskHandler       *handler.TaskHandler
	SubmissionHandler *handler.SubmissionHandler
	HintHandler       *handler.HintHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
	SubmitLimiter     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.Register(auth)

		protected := auth.Group("", jwtMiddleware)
		deps.AuthHandler.RegisterProtected(protected)
	}

	student := api.Group("/student", jwtMiddleware)

	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(student)
	}

	tasks := student.Group("/tasks")
	if deps.TaskHandler != nil {
		deps.TaskHandler.Register(tasks)
	}
	if deps.SubmissionHandler != nil {
		if deps.SubmitLimiter != nil {
			limited := student.Group("/tasks", deps.SubmitLimiter)
			deps.SubmissionHandler.Register(limited)
		} else {
			deps.SubmissionHandler.Register(tasks)
		}
	}
	if deps.HintHandler != nil {
		deps.HintHandler.Register(tasks)
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(tasks)
	}
}
