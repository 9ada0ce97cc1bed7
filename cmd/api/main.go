package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"standardsapi/internal/audit"
	"standardsapi/internal/config"
	"standardsapi/internal/database"
	"standardsapi/internal/database/migration"
	handlers "standardsapi/internal/http/handler"
	"standardsapi/internal/http/middleware"
	"standardsapi/internal/otel"
	"standardsapi/internal/queue"
	"standardsapi/internal/repository/postgres"
	"standardsapi/internal/resolver"
	"standardsapi/internal/service"
	"standardsapi/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

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

	// Redis delivers job ids to the validation workers
	q, err := queue.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer q.Close()

	// Repositories
	folderRepo := postgres.NewFolderPostgres(db)
	docRepo := postgres.NewDocumentPostgres(db)
	stdRepo := postgres.NewStandardPostgres(db)
	jobRepo := postgres.NewJobPostgres(db)
	reportRepo := postgres.NewReportPostgres(db)
	auditRepo := postgres.NewAuditPostgres(db)

	// Collaborators and services
	recorder := audit.NewRecorder(auditRepo, 0)
	res := resolver.New(docRepo, folderRepo, stdRepo)
	enqueuer := service.NewEnqueuer(jobRepo, q)

	svcs := handlers.Services{
		Folders:   service.NewFolderService(folderRepo, docRepo, res, enqueuer, recorder),
		Documents: service.NewDocumentService(objStore, docRepo, folderRepo, stdRepo, enqueuer, recorder),
		Standards: service.NewStandardService(objStore, docRepo, stdRepo, recorder),
		Reports:   service.NewReportService(docRepo, jobRepo, reportRepo),
		Resolver:  res,
		Audit:     recorder,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(middleware.Identity())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())

	handlers.RegisterRoutes(app, db, reg, svcs)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
