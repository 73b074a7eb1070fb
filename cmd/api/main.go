// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/lms-backend/internal/admin"
	"github.com/carterperez-dev/templates/lms-backend/internal/auth"
	"github.com/carterperez-dev/templates/lms-backend/internal/config"
	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/course"
	"github.com/carterperez-dev/templates/lms-backend/internal/enrollment"
	"github.com/carterperez-dev/templates/lms-backend/internal/health"
	"github.com/carterperez-dev/templates/lms-backend/internal/middleware"
	"github.com/carterperez-dev/templates/lms-backend/internal/server"
	"github.com/carterperez-dev/templates/lms-backend/internal/snapshot"
	"github.com/carterperez-dev/templates/lms-backend/internal/user"
)

const (
	drainDelay = 5 * time.Second

	authRequestsPerMinute = 10
	authBurst             = 5
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"driver", cfg.Database.Driver,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App, cfg.Database.Driver)
	switch {
	case err != nil:
		logger.Warn("failed to initialize telemetry", "error", err)
	case telemetry != nil:
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	store, err := openStorage(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if rdb != nil {
		redisClient = rdb.Client
		logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
	} else {
		logger.Info("redis not configured, using in-process fallbacks")
	}

	tokens, err := auth.NewTokenManager(cfg)
	if err != nil {
		return err
	}
	if jwtManager, ok := tokens.(*auth.JWTManager); ok {
		logger.Info("token manager initialized", "mode", cfg.Auth.TokenMode, "kid", jwtManager.KeyID())
	} else {
		logger.Info("token manager initialized", "mode", cfg.Auth.TokenMode)
	}

	userSvc := user.NewService(store.users)
	courseSvc := course.NewService(store.courses)
	enrollmentSvc := enrollment.NewService(store.enrollments, courseSvc, userSvc)

	var revocations auth.RevocationStore
	if redisClient != nil {
		revocations = auth.NewRedisRevocations(redisClient)
	}
	authSvc := auth.NewService(tokens, userSvc, revocations)

	if cfg.Seed.Enabled() {
		if err := authSvc.SeedAdmin(ctx, cfg.Seed); err != nil {
			return err
		}
	}

	snapshots := snapshot.New(cfg.Database.SnapshotDir, store.source, logger)
	if cfg.Database.SnapshotSchedule != "" {
		if err := snapshots.Start(cfg.Database.SnapshotSchedule); err != nil {
			return err
		}
	}

	checks := []health.Check{
		{Name: "database", Checker: store.checker},
		{Name: "snapshots", Checker: snapshots, Optional: true},
	}
	adminCfg := admin.HandlerConfig{
		Users:       userSvc,
		Courses:     courseSvc,
		Enrollments: enrollmentSvc,
		Snapshots:   snapshots,
		Driver:      store.driver,
		DBStats:     store.dbStats,
		DBPing:      store.checker.Ping,
	}
	if rdb != nil {
		checks = append(checks, health.Check{Name: "redis", Checker: rdb})
		adminCfg.RedisStats = rdb.PoolStats
		adminCfg.RedisPing = rdb.Ping
	}

	healthHandler := health.NewHandler(health.Options{
		Version: cfg.App.Version,
		Driver:  store.driver,
		Checks:  checks,
	})
	adminHandler := admin.NewHandler(adminCfg)
	authHandler := auth.NewHandler(authSvc)
	userHandler := user.NewHandler(userSvc)
	courseHandler := course.NewHandler(courseSvc)
	enrollmentHandler := enrollment.NewHandler(enrollmentSvc, cfg.Auth.Enforce)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimit.Enabled {
		router.Use(
			middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
				Limit: middleware.PerWindow(
					cfg.RateLimit.Requests,
					cfg.RateLimit.Burst,
					cfg.RateLimit.Window,
				),
				FailOpen: true,
				Skip:     middleware.SkipProbes,
			}).Handler,
		)
	}

	healthHandler.RegisterRoutes(router)

	if jwtManager, ok := tokens.(*auth.JWTManager); ok {
		router.Get("/.well-known/jwks.json", jwtManager.JWKS)
	}

	strict := middleware.StrictGuards(authSvc)
	// With enforcement off the data routes behave like an open development
	// data server: tokens are read when present but never required.
	guards := middleware.NewGuards(authSvc, cfg.Auth.Enforce)

	authHandler.RegisterRoutes(
		router,
		strict.Authenticate,
		credentialLimiter(cfg.RateLimit, redisClient),
	)
	userHandler.RegisterRoutes(router, guards.Authenticate, guards.Admin)
	courseHandler.RegisterRoutes(router, guards.Authenticate, guards.Admin)
	enrollmentHandler.RegisterRoutes(router, guards.Authenticate)
	adminHandler.RegisterRoutes(router, strict.Authenticate, strict.Admin)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	snapshots.Stop(shutdownCtx)

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := rdb.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := store.close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// credentialLimiter is the tighter per-endpoint limit on login and
// register. It is nil when rate limiting is disabled.
func credentialLimiter(
	cfg config.RateLimitConfig,
	rdb *redis.Client,
) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return nil
	}
	return middleware.NewRateLimiter(rdb, middleware.RateLimitConfig{
		Limit:    middleware.PerMinute(authRequestsPerMinute, authBurst),
		KeyFunc:  middleware.KeyByUserAndEndpoint,
		FailOpen: true,
	}).Handler
}
