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

	"github.com/ideaoasis/ideaoasis/app/api"
	"github.com/ideaoasis/ideaoasis/app/cfg"
	"github.com/ideaoasis/ideaoasis/app/database"
	"github.com/ideaoasis/ideaoasis/app/ideas"
	"github.com/ideaoasis/ideaoasis/app/sources"
	"github.com/ideaoasis/ideaoasis/app/tasks"
	"github.com/ideaoasis/ideaoasis/app/trends"
)

func main() {
	// Optional .env file for local development
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was requested
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting IdeaOasis server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBHost, appCfg.DBPort,
		appCfg.DBUser, appCfg.DBPassword, appCfg.DBName)
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
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	configCache := sources.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "count", configCache.GetConfigCount())

	ideaRepo := database.NewIdeaRepository(db)
	engagementRepo := database.NewEngagementRepository(db)

	trendClient := trends.NewClient(appCfg.TrendAPIURL, appCfg.TrendAPIKey,
		appCfg.UserAgent, time.Duration(appCfg.TrendAPITimeout)*time.Second)
	trendAnalyzer := trends.NewAnalyzer(trendClient)

	koreaFitAnalyzer := ideas.NewKoreaFitAnalyzer()
	roadmapGenerator := ideas.NewRoadmapGenerator()
	enricher := ideas.NewEnricher(ideaRepo, koreaFitAnalyzer, trendAnalyzer, roadmapGenerator)
	monitor := ideas.NewQualityMonitor()
	normalizer := ideas.NewNormalizer(ideaRepo)
	fetcher := sources.NewFetcher(&http.Client{}, appCfg.UserAgent)

	scheduler := tasks.NewScheduler(configCache, ideaRepo, fetcher, normalizer, enricher, monitor)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(ideaRepo, engagementRepo, enricher, monitor, normalizer)
	server := api.NewServer(handler)

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
	}

	slog.Info("Shutdown complete")
}
