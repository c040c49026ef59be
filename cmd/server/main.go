// Package main is the entry point for the crm-inbox HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/popeskul/crm-inbox/internal/adapter"
	"github.com/popeskul/crm-inbox/internal/config"
	"github.com/popeskul/crm-inbox/internal/handler"
	"github.com/popeskul/crm-inbox/internal/logging"
	"github.com/popeskul/crm-inbox/internal/middleware"
	"github.com/popeskul/crm-inbox/internal/observability"
	"github.com/popeskul/crm-inbox/internal/provider"
	"github.com/popeskul/crm-inbox/internal/realtime"
	"github.com/popeskul/crm-inbox/internal/repository"
	"github.com/popeskul/crm-inbox/internal/service"
)

func main() {
	configPath := os.Getenv("INBOX_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// redis only caches tenant lookups, so the server starts without it
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis is unreachable, tenant lookups will hit the database", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observability.Register(registry)

	hub := realtime.NewHub(cfg.Realtime.BufferSize, logger)
	providerClient := provider.NewClient(cfg.Provider.TimeoutDuration(), logger)

	repo := repository.NewRepository(db)
	svc, err := service.NewService(cfg, repo, redisClient, hub, providerClient, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	h := handler.NewHandler(svc, hub, adapter.New(), cfg, logger)

	middlewareConfig := &middleware.Config{
		Logger:         logger,
		RateLimit:      rate.Limit(cfg.Middleware.RateLimit),
		RateLimitBurst: cfg.Middleware.RateLimitBurst,
		RequestTimeout: time.Duration(cfg.Middleware.RequestTimeout) * time.Second,
	}
	if cfg.Middleware.EnableCORS {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.Middleware.AllowedOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.Middleware.AllowedOrigins
		}
		middlewareConfig.CORS = corsConfig
	}

	// cancelled on shutdown so open streams return
	baseCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      setupRouter(h, middlewareConfig, registry),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}

	if err := svc.Scheduler.Start(); err != nil {
		logger.Error("Failed to start audit retention scheduler", zap.Error(err))
	}

	go func() {
		logger.Info("Starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if svc.Scheduler.IsRunning() {
		if err := svc.Scheduler.Stop(); err != nil {
			logger.Error("Failed to stop scheduler", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("Closing realtime streams", zap.Int("subscribers", hub.Total()))
	cancelStreams()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
		_ = srv.Close()
	}

	logger.Info("Server exited")
}
