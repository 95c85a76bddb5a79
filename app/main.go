package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/talentbase/eventsync/app/api"
	"github.com/talentbase/eventsync/app/cfg"
	"github.com/talentbase/eventsync/app/database"
	"github.com/talentbase/eventsync/app/importer"
	"github.com/talentbase/eventsync/app/social"
	"github.com/talentbase/eventsync/app/tasks"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting EventSync server", "version", appCfg.Version)

	// Database connection
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	// Vendor configurations
	configCache := social.NewConfigCache(appCfg.VendorsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load vendor configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Vendor configurations loaded", "count", configCache.GetConfigCount())

	// Repositories
	credentialRepo := database.NewCredentialRepository(db)
	eventRepo := database.NewEventRepository(db)
	candidateRepo := database.NewCandidateRepository(db)
	rsvpRepo := database.NewRSVPRepository(db)
	activityRepo := database.NewActivityRepository(db)

	// Import pipeline
	writer := importer.NewWriter(candidateRepo, rsvpRepo, activityRepo)

	newClient := func(cred database.UserCredential) (importer.Client, error) {
		vendorConfig, err := configCache.GetConfig("meetup")
		if err != nil {
			return nil, fmt.Errorf("meetup vendor config missing: %w", err)
		}
		if !vendorConfig.Settings.Enabled {
			return nil, fmt.Errorf("meetup vendor is disabled")
		}
		return social.NewMeetup(social.NewSession(cred), vendorConfig, credentialRepo, appCfg.UserAgent), nil
	}

	reconciler := importer.NewReconciler(credentialRepo, eventRepo, writer, newClient, appCfg.ImportStartTime())

	// Background scheduler
	scheduler := tasks.NewScheduler(credentialRepo, reconciler)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount,
		"tick_interval", appCfg.SchedulerInterval, "import_interval", appCfg.ImportInterval)

	// HTTP server
	newOrderFetcher := func(cred database.UserCredential) (api.OrderFetcher, error) {
		vendorConfig, err := configCache.GetConfig("eventbrite")
		if err != nil {
			return nil, fmt.Errorf("eventbrite vendor config missing: %w", err)
		}
		return social.NewEventbrite(social.NewSession(cred), vendorConfig, appCfg.UserAgent), nil
	}

	handler := api.NewHandler(credentialRepo, eventRepo, candidateRepo, rsvpRepo, activityRepo,
		writer, reconciler, scheduler, newOrderFetcher)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
