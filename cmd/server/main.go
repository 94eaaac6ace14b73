package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ezemirmul/estimator/internal/api"
	"github.com/ezemirmul/estimator/internal/config"
	"github.com/ezemirmul/estimator/internal/db"
	"github.com/ezemirmul/estimator/internal/game"
	"github.com/ezemirmul/estimator/internal/logger"
	"github.com/ezemirmul/estimator/internal/repository/sqlite"
	"github.com/ezemirmul/estimator/internal/services"
	"github.com/ezemirmul/estimator/internal/source"
	"github.com/ezemirmul/estimator/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Estimator Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("snapshot_path=%s", cfg.SnapshotPath)
	log.Debug("snapshot_worker_count=%d", cfg.SnapshotWorkerCount)
	log.Debug("snapshot_queue_size=%d", cfg.SnapshotQueueSize)
	log.Debug("session_ttl_minutes=%d", cfg.SessionTTLMinutes)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	repo := sqlite.NewQuestionRepository(database.DB)

	// Read sources: the store, shadowed by the local snapshot.
	storeSource := source.NewStoreSource(repo)
	snapshotSource := source.NewSnapshotSource(cfg.SnapshotPath)
	reads := source.NewFallback(storeSource, snapshotSource, storeSource)

	// Background snapshot refreshes
	snapshotPool := worker.NewPool(cfg.SnapshotWorkerCount, cfg.SnapshotQueueSize)

	// Initialize services
	questionService := services.NewQuestionService(repo, reads, snapshotPool, cfg.SnapshotPath)
	importService := services.NewImportService(repo, snapshotPool, cfg.SnapshotPath)

	sessions := game.NewManager(reads, time.Duration(cfg.SessionTTLMinutes)*time.Minute)

	srv := &api.Server{
		QuestionService: questionService,
		ImportService:   importService,
		Sessions:        sessions,
		Health:          storeSource,
	}

	ctx, cancel := context.WithCancel(context.Background())
	snapshotPool.Start(ctx)
	go sessions.Run(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping background workers")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping snapshot pool")
	snapshotPool.Stop()

	log.Info("===========================================")
	log.Info("Estimator Server Stopped")
	log.Info("===========================================")
}
