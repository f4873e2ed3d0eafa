package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trade-journal-go/internal/alerts"
	"trade-journal-go/internal/analytics"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/ledger"
	"trade-journal-go/internal/logger"
	"trade-journal-go/internal/server"
	"trade-journal-go/internal/storage"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Open the record store; schema migration runs once here.
	store, err := storage.Open(cfg.Database.DSN, log)
	if err != nil {
		log.Fatal("Failed to open record store", zap.Error(err))
	}
	defer store.Close()

	// Wire the core services.
	tradeLedger := ledger.New(store, log)

	alertOpts := []alerts.Option{}
	if cfg.Alerts.CacheSize > 0 {
		alertOpts = append(alertOpts, alerts.WithCacheSize(cfg.Alerts.CacheSize))
	}
	if cfg.Alerts.WebhookURL != "" {
		log.Info("Alert webhook notifications enabled", zap.String("url", cfg.Alerts.WebhookURL))
		alertOpts = append(alertOpts, alerts.WithNotifier(alerts.NewWebhookNotifier(cfg.Alerts, log)))
	}
	alertStore, err := alerts.New(store, log, alertOpts...)
	if err != nil {
		log.Fatal("Failed to initialize alert store", zap.Error(err))
	}

	engine := analytics.NewEngine(tradeLedger, log)

	// Start the API server for the dashboard.
	api := server.New(cfg.Server.Port, tradeLedger, alertStore, engine, log)
	api.Start()

	// Wait for shutdown signal.
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := api.Stop(ctx); err != nil {
		log.Error("Failed to stop API server cleanly", zap.Error(err))
	}

	log.Info("Journal has been shut down.")
}
