package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"standardsapi/internal/audit"
	"standardsapi/internal/config"
	"standardsapi/internal/database"
	"standardsapi/internal/database/migration"
	"standardsapi/internal/orchestrator"
	"standardsapi/internal/otel"
	"standardsapi/internal/queue"
	"standardsapi/internal/repository/postgres"
	"standardsapi/internal/resolver"
	"standardsapi/internal/service"
	"standardsapi/internal/storage"
)

func main() {
	cfg := config.Load()
	loc := time.UTC

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	q, err := queue.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer q.Close()

	folderRepo := postgres.NewFolderPostgres(db)
	docRepo := postgres.NewDocumentPostgres(db)
	stdRepo := postgres.NewStandardPostgres(db)
	jobRepo := postgres.NewJobPostgres(db)
	reportRepo := postgres.NewReportPostgres(db)
	auditRepo := postgres.NewAuditPostgres(db)

	recorder := audit.NewRecorder(auditRepo, 0)
	res := resolver.New(docRepo, folderRepo, stdRepo)
	enqueuer := service.NewEnqueuer(jobRepo, q)

	orc := orchestrator.New(cfg.Worker, q, jobRepo, docRepo, reportRepo, res, objStore, recorder, enqueuer)

	log.SetFlags(0)
	log.Printf(`{"event":"worker_started","concurrency":%d}`, cfg.Worker.Concurrency)

	// Blocks until SIGINT/SIGTERM; workers drain their current job and exit.
	orc.Run(ctx)

	log.Printf(`{"event":"worker_stopped"}`)
}
