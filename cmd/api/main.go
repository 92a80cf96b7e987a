package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pdfvault/docs"
	"pdfvault/internal/config"
	"pdfvault/internal/database"
	"pdfvault/internal/database/migration"
	"pdfvault/internal/enrichment"
	handlers "pdfvault/internal/http/handler"
	"pdfvault/internal/http/middleware"
	tracing "pdfvault/internal/otel"
	"pdfvault/internal/repository"
	"pdfvault/internal/repository/memory"
	"pdfvault/internal/repository/postgres"
	"pdfvault/internal/service"
	"pdfvault/internal/storage"
)

// @title PDF Vault API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server_exit", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, loc)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Metadata store
	var (
		repo repository.FileRepository
		db   *sql.DB
	)
	switch cfg.MetadataBackend {
	case "memory":
		repo = memory.NewFileMemory()
		logger.Warn("metadata_backend_memory", slog.String("note", "records are lost on restart"))
	default:
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		repo = postgres.NewFilePostgres(db)
	}

	// Content store
	var objStore storage.Storage
	switch cfg.StorageBackend {
	case "local":
		objStore, err = storage.NewLocal(cfg.Local.Dir)
	default:
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
	}
	if err != nil {
		return fmt.Errorf("initialize object storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svcMetrics, err := service.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register service metrics: %w", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	opts := []service.Option{
		service.WithLogger(logger.With(slog.String("component", "file_service"))),
		service.WithMetrics(svcMetrics),
	}

	if cfg.Classifier.Enabled {
		timeout := time.Duration(cfg.Classifier.TimeoutSec) * time.Second
		enricher := enrichment.New(
			objStore,
			repo,
			enrichment.NewPDFExtractor(),
			enrichment.NewHuggingFaceClassifier(cfg.Classifier.Endpoint, cfg.Classifier.Model, cfg.Classifier.APIKey, timeout),
			enrichment.Config{
				Workers:    cfg.Classifier.Workers,
				QueueSize:  cfg.Classifier.QueueSize,
				JobTimeout: timeout,
				MaxBytes:   int64(cfg.Quota.MaxUploadBytes),
			},
			logger,
		)
		enricher.Start(ctx)
		defer enricher.Stop()
		opts = append(opts, service.WithEnqueuer(enricher))
	}

	fileSvc := service.NewFileService(objStore, repo, service.NewQuotaGuard(repo, cfg.Quota.LimitBytes), opts...)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.Quota.MaxUploadBytes,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.LoggerWithWriter(os.Stdout, loc))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		host := c.Get("Host")
		if host == "" {
			host = cfg.AppHost
		}
		docs.SwaggerInfo.Host = host
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	verifier := middleware.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	// A nil *sql.DB must not become a non-nil Pinger.
	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}
	handlers.RegisterRoutes(app, pinger, fileSvc, middleware.Authenticate(verifier))

	go func() {
		<-ctx.Done()
		logger.Info("server_shutdown")
		_ = app.ShutdownWithTimeout(30 * time.Second)
	}()

	addr := ":" + cfg.Port
	logger.Info("server_start",
		slog.String("addr", addr),
		slog.String("metadata_backend", cfg.MetadataBackend),
		slog.String("storage_backend", cfg.StorageBackend),
		slog.Int64("quota_limit_bytes", cfg.Quota.LimitBytes),
		slog.Bool("classifier_enabled", cfg.Classifier.Enabled),
	)
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}
