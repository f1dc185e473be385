// main is the entry point of the Alumnos demo API.
//
// STARTUP SEQUENCE:
//  1. Load configuration (.env, optional YAML, environment)
//  2. Initialise the logger
//  3. Open the record backend and load the seed roster
//  4. Start the background reset sweep
//  5. Build the router and start the HTTP server in a goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/alumnos-api
//
// or with a config file:
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/alumnos-api
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/alumnos-api/internal/config"
	"github.com/aanand-mishra/alumnos-api/internal/http/router"
	"github.com/aanand-mishra/alumnos-api/internal/roster"
	"github.com/aanand-mishra/alumnos-api/internal/storage"
	"github.com/aanand-mishra/alumnos-api/internal/storage/memory"
	"github.com/aanand-mishra/alumnos-api/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env, cfg.Debug)
	slog.SetDefault(log)

	log.Info("starting alumnos-api",
		slog.String("env", cfg.Env),
		slog.String("version", cfg.Version),
		slog.String("storage", cfg.Storage.Backend),
		slog.Duration("reset_window", cfg.ResetWindow),
	)

	// ── 3. Initialise Storage and Roster ──────────────────────────────────
	store, err := openStorage(cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	svc, err := roster.New(store, roster.DemoSeed(time.Now()),
		roster.WithResetWindow(cfg.ResetWindow),
		roster.WithLogger(log),
	)
	if err != nil {
		log.Error("failed to seed roster", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── 4. Background Reset Sweep ─────────────────────────────────────────
	if cfg.ResetSweep != "" {
		sweeper, err := roster.NewSweeper(svc, cfg.ResetSweep, log)
		if err != nil {
			log.Error("invalid RESET_SWEEP", slog.String("spec", cfg.ResetSweep),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	// ── 5. Create and Start the HTTP Server ───────────────────────────────
	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr(),
		Handler:      router.New(cfg, log, svc),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", server.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		log.Info("shutdown signal received, stopping server...")
	case err, ok := <-errCh:
		if ok && err != nil {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		return
	}

	log.Info("server stopped gracefully")
}

// openStorage builds the backend named by cfg.Storage.Backend.
func openStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.Storage.Backend == config.BackendSQLite {
		return sqlite.New(cfg)
	}
	return memory.New(), nil
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// development: human-readable text output, DEBUG level unless debug is off.
// staging:     JSON at DEBUG level.
// production:  JSON at INFO level.
func setupLogger(env string, debug bool) *slog.Logger {
	switch env {
	case config.EnvProduction:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case config.EnvStaging:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
}
