package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"archivedoc/internal/service"
)

// RegisterRoutes attaches the HTTP surface to the Fiber app. Handlers stay
// thin; every decision lives in the services.
func RegisterRoutes(
	app *fiber.App,
	db *sql.DB,
	analyzer service.AnalyzerService,
	documents service.DocumentService,
	entities service.EntityService,
	jobs service.JobService,
) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/analysis", AnalyzeFile(analyzer))

	app.Post("/documents", SaveDocument(documents))
	app.Get("/documents", ListDocuments(documents))
	app.Get("/documents/:id", GetDocument(documents))
	app.Get("/documents/:id/image", GetDocumentImage(documents))
	app.Patch("/documents/:id", PatchDocument(documents))
	app.Delete("/documents/:id", DeleteDocument(documents))

	app.Get("/entities", ListEntities(entities))
	app.Get("/entities/:id", GetEntity(entities))

	app.Post("/jobs", SubmitJob(jobs))
	app.Get("/jobs/:id", GetJob(jobs))
	app.Delete("/jobs/:id", CancelJob(jobs))

	app.Post("/maintenance/entities/cleanup", CleanupOrphanEntities(entities))
	app.Post("/maintenance/jobs/sweep", SweepJobs(jobs))
}
