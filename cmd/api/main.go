package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"moveis-catalog/internal/analytics"
	"moveis-catalog/internal/config"
	"moveis-catalog/internal/database"
	"moveis-catalog/internal/logger"
	"moveis-catalog/internal/server"

	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, flusher *analytics.Flusher, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// In-flight requests get 30 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := flusher.Stop(ctx); err != nil {
		logger.Error("Failed to stop analytics flusher", zap.Error(err))
	}

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func main() {
	cfg := config.Load()

	log, err := logger.NewWithFile(cfg.Server.Env, cfg.Log.File)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting furniture catalog API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	log.Info("Database health check", zap.Any("health", dbService.Health()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if err := database.RunMigrations(ctx, dbService.DB(), cfg.Database.MigrationsDir, log); err != nil {
		cancel()
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully")

	srv, err := server.NewServer(cfg, log, dbService)
	if err != nil {
		cancel()
		log.Fatal("Failed to create server", zap.Error(err))
	}
	if err := srv.Bootstrap(ctx); err != nil {
		cancel()
		log.Fatal("Failed to bootstrap server", zap.Error(err))
	}
	cancel()

	flusher, err := analytics.NewFlusher(srv.Tracker(), cfg.Analytics.FlushSchedule, log)
	if err != nil {
		log.Fatal("Failed to schedule analytics flush", zap.Error(err))
	}
	flusher.Start()

	done := make(chan bool, 1)
	go gracefulShutdown(srv, flusher, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
