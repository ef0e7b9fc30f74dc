package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-synth/internal/api/http"
	"github.com/spec-kit/ticket-synth/internal/api/http/handlers"
	"github.com/spec-kit/ticket-synth/internal/auth"
	"github.com/spec-kit/ticket-synth/internal/chat"
	"github.com/spec-kit/ticket-synth/internal/config"
	"github.com/spec-kit/ticket-synth/internal/events"
	"github.com/spec-kit/ticket-synth/internal/generator"
	"github.com/spec-kit/ticket-synth/internal/observability"
	"github.com/spec-kit/ticket-synth/internal/persistence"
	"github.com/spec-kit/ticket-synth/internal/repository"
	"github.com/spec-kit/ticket-synth/internal/service"
	"github.com/spec-kit/ticket-synth/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, err := generator.Load(cfg.Generator, generator.SystemClock(), logger)
	if err != nil {
		logger.Fatal("failed to load generator", zap.Error(err))
	}
	logger.Info("generator ready",
		zap.String("data_dir", cfg.Generator.DataDir),
		zap.Strings("profiles", engine.Profiles().Names()))
	if cfg.Generator.Seed != 0 {
		logger.Warn("GENERATOR_SEED only applies to ticketgen; API requests pass seed in the body",
			zap.Int64("seed", cfg.Generator.Seed))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	archiveDeps := service.ArchiveDependencies{Dispatcher: dispatcher, Logger: logger}
	if pg.Enabled() {
		archiveDeps.BatchRepo = repository.NewBatchRepository(pg.PoolHandle())
	}
	if cache := persistence.NewBatchCache(redis, cfg.Redis.BatchTTL()); cache != nil {
		archiveDeps.Cache = cache
	}
	archiveService := service.NewArchiveService(archiveDeps)
	worker.StartArchiveWorker(archiveService)

	generationService := service.NewGenerationService(service.GenerationDependencies{
		Engine:     engine,
		Archive:    archiveService,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	authService := service.NewAuthService(cfg.Auth)
	if !authService.Enabled() {
		logger.Warn("AUTH_BOT_API_KEY_HASH not provided; generation routes are unauthenticated")
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), authService.Enabled())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(generationService, engine.Profiles()),
		Bot:            handlers.NewBotHandler(generationService, chat.NewFormatter(), logger),
		AuthMiddleware: authMiddleware,
		RateLimiter:    httptransport.NewClientRateLimiter(cfg.RateLimit),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
