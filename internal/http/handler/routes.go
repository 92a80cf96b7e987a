package handler

import (
	"github.com/gofiber/fiber/v2"

	"pdfvault/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// auth guards the /files group; it must store the user ID via middleware.Authenticate.
func RegisterRoutes(app *fiber.App, db Pinger, svc service.FileService, auth fiber.Handler) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	files := app.Group("/files", auth)
	files.Get("/", ListFiles(svc))
	files.Post("/", UploadFile(svc))
	// Registered before /:id so "usage" is not parsed as an id.
	files.Get("/usage", GetUsage(svc))
	files.Get("/:id", DownloadFile(svc))
	files.Patch("/:id", RenameFile(svc))
	files.Delete("/:id", DeleteFile(svc))
}
