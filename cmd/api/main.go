package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linguaquest/dialogue-engine/internal/config"
	"github.com/linguaquest/dialogue-engine/internal/handlers"
	"github.com/linguaquest/dialogue-engine/internal/logger"
	"github.com/linguaquest/dialogue-engine/internal/middleware"
	"github.com/linguaquest/dialogue-engine/internal/services"
	"github.com/linguaquest/dialogue-engine/internal/session"
	"github.com/linguaquest/dialogue-engine/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Dialogue Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"default_tier", cfg.DefaultTier,
		"data_dir", cfg.DataDir)

	library, err := storage.LoadLibrary(cfg.DataDir, log)
	if err != nil {
		log.Error("Failed to load dialogue content", "error", err)
		os.Exit(1)
	}

	progress := storage.NewRedisProgressStore(cfg.RedisURL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := progress.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to progress store", "error", err)
		os.Exit(1)
	}

	factory := services.NewFactory(library, log)
	manager := session.NewManager(log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(progress, library, log)
	mux.Handle("/health", healthHandler)

	treeHandler := handlers.NewTreeHandler(library, log)
	mux.Handle("/v1/trees", treeHandler)
	mux.Handle("/v1/trees/", treeHandler)

	sessionHandler := handlers.NewSessionHandler(manager, factory, progress,
		services.ParseTier(cfg.DefaultTier), cfg.AutoCloseDelay, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	handler := middleware.Logger(log, mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := progress.Close(); err != nil {
		log.Error("Error closing progress store", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
