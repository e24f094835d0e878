package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/config"
	"github.com/xelth-com/ongoingwms/internal/database"
	"github.com/xelth-com/ongoingwms/internal/handlers"
	"github.com/xelth-com/ongoingwms/internal/logging"
	"github.com/xelth-com/ongoingwms/internal/scheduler"
	"github.com/xelth-com/ongoingwms/internal/services/odoo"
	"github.com/xelth-com/ongoingwms/internal/services/wmssync"
	"github.com/xelth-com/ongoingwms/internal/store"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 2. Initialize database (embedded when no password is configured)
	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// 3. Auto-Migrate Schema
	if err := db.Migrate(); err != nil {
		logger.Warn("migration warning", zap.Error(err))
	} else {
		logger.Info("schema synchronized")
	}

	// 4. Services
	repo := store.NewRepository(db.DB)
	opts := wmssync.ClientOptions{DefaultURL: cfg.WMS.DefaultURL, Timeout: cfg.WMS.Timeout}
	if cfg.WMS.DebugLog {
		opts.Envelopes = repo.Envelopes(logger)
	}
	syncService := wmssync.NewService(repo, wmssync.NewClientFactory(opts, logger), logger)

	var mirror scheduler.MirrorRunner
	if cfg.Odoo.Enabled() {
		client := odoo.NewClient(cfg.Odoo.URL, cfg.Odoo.Database, cfg.Odoo.Username, cfg.Odoo.Password)
		mirror = odoo.NewSyncService(client, db.DB, logger)
	} else {
		logger.Info("odoo mirror disabled")
	}

	// 5. Scheduler
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	orchestrator := scheduler.NewOrchestrator(scheduler.Workers(cfg.Schedule, syncService, mirror, repo, logger), logger)
	if err := orchestrator.Start(ctx); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	// 6. Start server with graceful shutdown
	router := handlers.NewRouter(cfg, repo, syncService, logger)
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	sig := <-shutdown
	logger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	// Running workflows observe the cancelled context and return
	stop()
	orchestrator.Stop()

	// Close database (this also stops embedded PostgreSQL)
	if err := db.Close(); err != nil {
		logger.Error("database close error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
