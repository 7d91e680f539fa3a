package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abacusquest/abacusquest/internal/api"
	"github.com/abacusquest/abacusquest/internal/auth"
	"github.com/abacusquest/abacusquest/internal/config"
	"github.com/abacusquest/abacusquest/internal/db"
	"github.com/abacusquest/abacusquest/internal/goals"
	"github.com/abacusquest/abacusquest/internal/jobs"
	"github.com/abacusquest/abacusquest/internal/kvstore"
	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/abacusquest/abacusquest/internal/repository/sqlite"
	"github.com/abacusquest/abacusquest/internal/services"
	"github.com/abacusquest/abacusquest/internal/worker"
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
	log.Info("AbacusQuest Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("token_ttl=%s", cfg.TokenTTL)
	log.Debug("cors_allowed_origins=%v", cfg.CORSAllowedOrigins)
	log.Debug("worker_count=%d", cfg.WorkerCount)
	log.Debug("worker_queue_size=%d", cfg.WorkerQueueSize)
	log.Debug("weekly_goals_scope=%s", cfg.WeeklyGoalsScope)

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

	// Repositories and stores
	studentRepo := sqlite.NewStudentRepository(database.DB)
	progressRepo := sqlite.NewProgressRepository(database.DB)
	practiceRepo := sqlite.NewPracticeRepository(database.DB)
	kv := kvstore.NewSQLite(database.DB)

	// Achievement evaluation runs in the background after every save
	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	gamificationService := services.NewGamificationService(kv, progressRepo, practiceRepo)
	queue := jobs.NewWorkerQueue(pool, gamificationService)

	srv := &api.Server{
		Students:       services.NewStudentService(studentRepo),
		Progress:       services.NewProgressService(progressRepo, practiceRepo, queue, goals.Scope(cfg.WeeklyGoalsScope)),
		Practice:       services.NewPracticeService(practiceRepo, gamificationService, queue),
		Gamification:   gamificationService,
		Lists:          services.NewListService(kv),
		Tokens:         auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		DB:             database,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
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

	// Stop accepting requests first so no new evaluations are queued
	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping worker pool")
	pool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("AbacusQuest Server Stopped")
	log.Info("===========================================")
}
