package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"blogeditor/docs"
	"blogeditor/internal/config"
	"blogeditor/internal/database"
	"blogeditor/internal/database/migration"
	"blogeditor/internal/events"
	handlers "blogeditor/internal/http/handler"
	"blogeditor/internal/http/middleware"
	"blogeditor/internal/logger"
	"blogeditor/internal/metrics"
	appotel "blogeditor/internal/otel"
	"blogeditor/internal/repository"
	"blogeditor/internal/repository/memory"
	"blogeditor/internal/repository/mongodb"
	"blogeditor/internal/repository/postgres"
	"blogeditor/internal/service"
	"blogeditor/internal/storage"
)

// @title Blog Editor API
// @version 1.0
// @description Draft autosave and publish lifecycle for blog posts.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server_failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.AppConfig, zl *zap.Logger) error {
	shutdownTracing, err := appotel.Init(ctx, "blogeditor", zl)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			zl.Warn("tracing_shutdown_failed", zap.Error(err))
		}
	}()

	repo, ping, closeStore, err := openStore(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []service.Option{service.WithLogger(zl)}

	if cfg.Redis.URL != "" {
		ropts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(ropts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Warn("redis_unavailable", zap.Error(err))
		}
		pub := events.NewRedisPublisher(rdb, cfg.Redis.Channel)
		opts = append(opts, service.WithEvents(pub))
		zl.Info("events_enabled", zap.String("channel", pub.Channel()))
	}

	if cfg.MinIO.Endpoint != "" {
		objStore, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			return fmt.Errorf("init object storage: %w", err)
		}
		opts = append(opts, service.WithSnapshots(storage.NewSnapshots(objStore)))
		zl.Info("snapshots_enabled", zap.String("bucket", cfg.MinIO.Bucket))
	}

	blogSvc := service.NewLifecycleService(repo, opts...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(zl))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, "writes")
	handlers.RegisterRoutes(app, handlers.Deps{
		Blogs:        blogSvc,
		Ping:         ping,
		WriteLimiter: limiter.Handler(),
	})

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

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server_listening", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("server_shutdown")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}

// openStore builds the document repository for the configured driver.
func openStore(ctx context.Context, cfg *config.AppConfig, zl *zap.Logger) (repository.DocumentRepository, handlers.PingFunc, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, zl); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return postgres.NewDocumentPostgres(db), db.PingContext, func() { _ = db.Close() }, nil

	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, nil, err
		}
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		return mongodb.NewDocumentMongo(coll), ping, closeFn, nil

	case config.DriverMemory:
		zl.Warn("memory_store", zap.String("msg", "documents are lost on restart"))
		return memory.NewDocumentMemory(), nil, func() {}, nil

	default:
		return nil, nil, nil, errors.New("unknown STORE_DRIVER: " + cfg.StoreDriver)
	}
}
