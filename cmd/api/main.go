package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/blog-service/internal/api/http"
	"github.com/spec-kit/blog-service/internal/api/http/handlers"
	"github.com/spec-kit/blog-service/internal/assets"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/observability"
	"github.com/spec-kit/blog-service/internal/persistence"
	"github.com/spec-kit/blog-service/internal/repository"
	"github.com/spec-kit/blog-service/internal/service"
	"github.com/spec-kit/blog-service/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher(logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	postRepo := repository.NewPostRepository(pg.PoolHandle())
	var cacheClient repository.CacheClient
	if client := redis.ClientHandle(); client != nil {
		cacheClient = client
	}
	postCache := repository.NewPostCache(cacheClient, cfg.Redis.CacheTTL)

	var uploader assets.Uploader
	if httpUploader := assets.NewHTTPUploader(cfg.Assets); httpUploader != nil {
		uploader = httpUploader
	} else {
		logger.Warn("ASSET_UPLOAD_URL not provided; image uploads disabled")
	}

	authService := service.NewAuthService(cfg.Auth)
	postService := service.NewPostService(service.PostDependencies{
		Repo:       postRepo,
		Cache:      postCache,
		Uploader:   uploader,
		Dispatcher: dispatcher,
	}, logger)

	metrics := observability.NewMetrics()
	guard := auth.NewRouteGuard(authService.TokenManager(), logger, metrics)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(authService, logger)
	postsHandler := handlers.NewPostsHandler(postService)
	pagesHandler := handlers.NewPagesHandler(postService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: healthHandler,
		Auth:   authHandler,
		Posts:  postsHandler,
		Pages:  pagesHandler,
		Guard:  guard,
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
