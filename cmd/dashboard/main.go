package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/retailer-dashboard/internal/api/http"
	"github.com/spec-kit/retailer-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/retailer-dashboard/internal/apiclient"
	"github.com/spec-kit/retailer-dashboard/internal/auth"
	"github.com/spec-kit/retailer-dashboard/internal/cache"
	"github.com/spec-kit/retailer-dashboard/internal/config"
	"github.com/spec-kit/retailer-dashboard/internal/events"
	"github.com/spec-kit/retailer-dashboard/internal/observability"
	"github.com/spec-kit/retailer-dashboard/internal/persistence"
	"github.com/spec-kit/retailer-dashboard/internal/repository"
	"github.com/spec-kit/retailer-dashboard/internal/service"
	"github.com/spec-kit/retailer-dashboard/internal/session"
	"github.com/spec-kit/retailer-dashboard/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var auditRepo repository.AccessAuditRepository
	if pg.Enabled() {
		auditRepo = repository.NewAccessAuditRepository(pg.Pool)
	}
	worker.NewAccessAuditWorker(auditRepo, logger).Start(dispatcher)

	var redis *persistence.Redis
	store := cache.Store(cache.NewMemoryStore())
	if cfg.Cache.Driver == config.CacheDriverRedis {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		store = cache.NewRedisStore(redis.Client, cfg.Cache.KeyPrefix)
	}
	responses := cache.New(store, cfg.Cache.TTL(),
		cache.WithLogger(logger),
		cache.WithMetrics(metrics),
		cache.WithDispatcher(dispatcher),
	)

	api, err := apiclient.New(apiclient.Config{
		BaseURL:          cfg.API.BaseURL,
		MediaBaseURL:     cfg.API.MediaBaseURL,
		Timeout:          cfg.App.RequestTimeout(),
		MaxResponseBytes: cfg.API.MaxResponseBytes,
	}, responses, logger, metrics)
	if err != nil {
		logger.Fatal("invalid api configuration", zap.Error(err))
	}

	cookies := session.NewCookieStore(session.CookieOptions{
		RememberMaxAge: cfg.Session.RememberMaxAgeSeconds,
		Secure:         cfg.App.Production(),
	})
	policy := auth.NewPolicy(
		auth.WithStaticExtensions(cfg.Gate.StaticExtensions),
		auth.WithExpiredTokenRejection(cfg.Gate.RejectExpiredTokens),
	)

	authService := service.NewAuthService(api, dispatcher, logger)
	profileService := service.NewProfileService(api, logger)
	productService := service.NewProductService(api)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, api),
		Pages:    handlers.NewPagesHandler(profileService, productService, cookies),
		Auth:     handlers.NewAuthHandler(authService, cookies),
		Profile:  handlers.NewProfileHandler(profileService, cookies),
		Products: handlers.NewProductsHandler(productService, cookies),
		Gate:     auth.NewGate(policy, cookies, logger, metrics, dispatcher),
		Cookies:  cookies,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
	logger.Info("stopped", zap.Any("metrics", metrics.Snapshot()))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
