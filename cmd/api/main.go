package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"database/sql"

	"github.com/Dan9191/loan-analytics/internal/config"
	"github.com/Dan9191/loan-analytics/internal/handler"
	"github.com/Dan9191/loan-analytics/internal/integrations/cbr"
	"github.com/Dan9191/loan-analytics/internal/loader"
	"github.com/Dan9191/loan-analytics/internal/metrics"
	"github.com/Dan9191/loan-analytics/internal/middleware"
	"github.com/Dan9191/loan-analytics/internal/repository"
	"github.com/Dan9191/loan-analytics/internal/scheduler"
	"github.com/Dan9191/loan-analytics/internal/service"
	"github.com/Dan9191/loan-analytics/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := service.Deps{}

	// Initialize database
	var db *sql.DB
	if cfg.NeedsDB() {
		db, err = sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
	}
	if cfg.Persist {
		repo := repository.NewRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatalf("Failed to create schema: %v", err)
		}
		deps.Store = repo
	}

	switch cfg.Source {
	case config.SourcePostgres:
		deps.Source = loader.NewPostgresSource(db, cfg.RawTable, logger)
	default:
		deps.Source = loader.NewCSVSource(cfg.CSVPath, logger)
	}

	if cfg.RedisAddr != "" {
		cache := repository.NewRedisCache(cfg.RedisAddr)
		defer cache.Close()
		if err := cache.Ping(ctx); err != nil {
			logger.Warnf("Redis unavailable, caching in process: %v", err)
		} else {
			deps.Cache = cache
		}
	}
	if cfg.CBREnabled {
		deps.KeyRate = cbr.NewCBRClient(cfg, logger)
	}
	if len(cfg.NotifyTo) > 0 {
		deps.Notifier = email.NewSender(cfg, logger)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Metrics = metrics.New(reg)

	// Initialize layers
	svc := service.NewService(deps, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(logger))
	h.Routes(r, middleware.AuthMiddleware(cfg), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if cfg.Schedule != "" {
		sched, err := scheduler.New(ctx, svc, cfg.Schedule, logger)
		if err != nil {
			logger.Fatalf("Failed to set up scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}
	if cfg.RunOnStart {
		go func() {
			if _, err := svc.Run(ctx); err != nil {
				logger.Errorf("Initial run failed: %v", err)
			}
		}()
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// POST /runs waits for the whole run
		WriteTimeout: 5 * time.Minute,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Shutdown failed: %v", err)
		}
	}()

	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
