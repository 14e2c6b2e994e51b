package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/lingoflash/internal/api"
	"github.com/vytor/lingoflash/internal/config"
	"github.com/vytor/lingoflash/internal/db"
	"github.com/vytor/lingoflash/internal/jobs"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/repository/sqlite"
	"github.com/vytor/lingoflash/internal/services"
	"github.com/vytor/lingoflash/internal/srs"
	"github.com/vytor/lingoflash/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("LingoFlash Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("history_worker_count=%d", cfg.HistoryWorkerCount)
	log.Debug("history_queue_size=%d", cfg.HistoryQueueSize)
	log.Debug("history_retention_days=%d", cfg.HistoryRetentionDays)
	log.Debug("daily_new_items_limit=%d", cfg.DailyNewItemsLimit)
	log.Debug("daily_review_limit=%d", cfg.DailyReviewLimit)
	log.Debug("review_threshold=%d", cfg.ReviewThreshold)
	log.Debug("review_retry_attempts=%d", cfg.ReviewRetryAttempts)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	itemRepo := sqlite.NewItemRepository(database.DB)
	historyRepo := sqlite.NewHistoryRepository(database.DB)

	historyPool := worker.NewPool(cfg.HistoryWorkerCount, cfg.HistoryQueueSize)
	jobQueue := jobs.NewWorkerQueue(historyPool, historyRepo)

	engine := srs.NewEngine()
	queueDefaults := srs.QueueConfig{
		DailyNewItemsLimit: cfg.DailyNewItemsLimit,
		DailyReviewLimit:   cfg.DailyReviewLimit,
		ReviewThreshold:    cfg.ReviewThreshold,
	}

	srv := &api.Server{
		ReviewService: services.NewReviewService(itemRepo, historyRepo, engine, cfg.ReviewRetryAttempts),
		QueueService:  services.NewQueueService(itemRepo, historyRepo, engine, queueDefaults),
		StatsService:  services.NewStatsService(itemRepo, engine),
		DB:            database,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	historyPool.Start(ctx)
	pruneCtx, stopPrune := context.WithCancel(ctx)
	if cfg.HistoryRetentionDays > 0 {
		retention := time.Duration(cfg.HistoryRetentionDays) * srs.Day
		go jobs.SchedulePrune(pruneCtx, jobQueue, srs.Day, retention, time.Now)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Stop scheduling prunes and let a running one finish before the database closes.
	stopPrune()
	log.Debug("stopping history pool (%d pending)", historyPool.QueueSize())
	historyPool.Stop()

	log.Info("===========================================")
	log.Info("LingoFlash Server Stopped")
	log.Info("===========================================")
}
