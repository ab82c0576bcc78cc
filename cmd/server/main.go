package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mcqengine/internal/app"
	"mcqengine/internal/config"
	"mcqengine/internal/logger"
)

func main() {
	// Load .env before anything reads the environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("FATAL: init logger: %v", err)
	}
	defer appLog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("Failed to initialize app", "error", err)
	}
	defer a.Close()

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: a.Router(),
	}

	// Start server in a goroutine
	go func() {
		appLog.Info("Server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", "error", err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give in-flight generations 30 seconds to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", "error", err)
		return
	}

	appLog.Info("Server exited properly")
}
