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

	"github.com/arjunsatarkar/tagrss/app/api"
	"github.com/arjunsatarkar/tagrss/app/cfg"
	"github.com/arjunsatarkar/tagrss/app/core"
	"github.com/arjunsatarkar/tagrss/app/database"
	"github.com/arjunsatarkar/tagrss/app/feed"
	"github.com/arjunsatarkar/tagrss/app/seed"
	"github.com/arjunsatarkar/tagrss/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting tagrss", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.StoragePath)
	if err != nil {
		slog.Error("Failed to open storage", "path", appCfg.StoragePath, "error", err)
		os.Exit(1)
	}

	migrationVersion, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", migrationVersion, "dirty", dirty)

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.FetchTimeout) * time.Second,
	}
	fetcher := feed.NewFetcher(httpClient, feed.NewParser(), appCfg.UserAgent)

	c := core.New(db, database.NewFeedRepository(db), database.NewEntryRepository(db), fetcher)
	defer c.Close()

	if appCfg.SeedFile != "" {
		defs, err := seed.Load(appCfg.SeedFile)
		if err != nil {
			slog.Error("Failed to load seed file", "path", appCfg.SeedFile, "error", err)
			os.Exit(1)
		}
		registered := seed.Register(context.Background(), c, defs)
		slog.Info("Seed feeds processed", "registered", registered, "total", len(defs))
	}

	scheduler := tasks.NewScheduler(c, time.Duration(appCfg.UpdateInterval)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(c)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         appCfg.Host + ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
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

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// The deferred calls stop the scheduler first, then close the storage
	// once no operations are in flight.
}
