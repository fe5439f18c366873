package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"cdox/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only translate HTTP to service calls and views.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, opts Options) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	docs := app.Group("/documents")
	docs.Get("/", ListDocuments(docSvc, opts))
	docs.Post("/filter", FilterDocuments(docSvc, opts))
	docs.Get("/years", ListYears(docSvc))
	docs.Get("/types", ListTypes(docSvc))
	docs.Get("/filter-form", FilterForm(docSvc, opts))
	docs.Get("/:id", GetDocument(docSvc, opts))
	docs.Post("/:id/downloads", RecordDownload(docSvc))
}

// HealthCheck godoc
// @Summary Readiness probe, pings the database
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, CodeUnavailable, "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
