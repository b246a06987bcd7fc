package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkview-dashboard/config"
	"parkview-dashboard/internal/api"
	"parkview-dashboard/internal/backend"
	"parkview-dashboard/internal/dashboard"
	"parkview-dashboard/internal/db"
	"parkview-dashboard/internal/geocode"
	"parkview-dashboard/internal/prefs"
)

func main() {
	logger := log.New(os.Stdout, "parkviewd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded from %s", configPath)

	if cfg.Backend.BaseURL == "" {
		logger.Fatalf("backend.base_url must be configured")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize preference store: %v", err)
	}
	store := prefs.NewGormStore(gormDB)
	logger.Println("preference store initialized")

	lots := backend.New(cfg.Backend, func() string {
		return prefs.Token(context.Background(), store)
	})
	geocoder := geocode.New(cfg.Geocoder)

	sessions := dashboard.NewManager(cfg, lots, geocoder, store)
	defer sessions.Close()

	router := api.NewRouter(cfg, sessions, store)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
