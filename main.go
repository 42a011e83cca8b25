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

	"goldcast/internal/config"
	"goldcast/internal/logger"
	"goldcast/internal/server"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("Failed to configure logger: %v", err)
	}

	logger.Info("starting gold forecast dashboard", logger.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"backend":     cfg.BackendURL,
		"locale":      cfg.Locale,
		"timezone":    cfg.Timezone,
		"mockup":      cfg.MockupMode,
		"version":     config.GetVersion(),
	})

	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", err)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // no client-side fetch timeout by default
		IdleTimeout:  60 * time.Second,
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go srv.Run(runCtx)

	go func() {
		logger.Infof("server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", err)
	}

	logger.Info("server stopped")
}
