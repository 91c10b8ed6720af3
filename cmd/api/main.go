package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"archivedoc/docs"
	"archivedoc/internal/ai"
	"archivedoc/internal/config"
	"archivedoc/internal/database"
	"archivedoc/internal/database/migration"
	handlers "archivedoc/internal/http/handler"
	"archivedoc/internal/http/middleware"
	"archivedoc/internal/imaging"
	"archivedoc/internal/otel"
	"archivedoc/internal/repository/postgres"
	"archivedoc/internal/service"
	"archivedoc/internal/storage"
)

// @title Archive Document API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.Local

	ctx := context.Background()

	// Initialize tracing before anything that emits spans
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		_ = shutdownTracing(context.Background())
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Gemini classifier behind a circuit breaker
	classifier, err := ai.NewGemini(ctx, cfg.Gemini)
	if err != nil {
		log.Fatalf("failed to initialize classifier: %v", err)
	}
	defer classifier.Close()

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	entityRepo := postgres.NewEntityPostgres(db)

	resolver := service.NewEntityResolver(entityRepo)
	analyzerSvc := service.NewAnalyzerService(objStore, imaging.NewConverter(), classifier, cfg.Cache)
	docSvc := service.NewDocumentService(db, docRepo, resolver, objStore)
	entitySvc := service.NewEntityService(entityRepo)
	jobSvc := service.NewJobService(analyzerSvc, docSvc, cfg.Jobs)

	// Expired jobs are removed on a fixed interval
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Jobs.SweepIntervalMin) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			jobSvc.Sweep(context.Background())
		}
	}()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	// Server-side spans per request
	app.Use(otelfiber.Middleware())

	// Prometheus request counter plus the /metrics scrape endpoint
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, analyzerSvc, docSvc, entitySvc, jobSvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
