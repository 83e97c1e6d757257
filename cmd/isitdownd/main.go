package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"isitdown/internal/config"
	"isitdown/internal/httpapi"
	"isitdown/internal/logging"
	"isitdown/internal/metrics"
	"isitdown/internal/notify"
	"isitdown/internal/probe"
	"isitdown/internal/repo"
	"isitdown/internal/repo/postgres"
	"isitdown/internal/repo/sqlite"
	"isitdown/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.FromEnv()

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogConsole)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var store repo.Store
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer pg.Close()
		store = pg
		logger.Info("store_postgres")
	} else {
		sq, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		defer sq.Close()
		store = sq
		logger.Info("store_sqlite", zap.String("path", cfg.SQLitePath))
	}

	// Saved settings win; until the user saves any, the env default
	// applies.
	settings, haveSettings, err := store.LoadSettings(ctx)
	if err != nil {
		logger.Warn("settings_load_error", zap.Error(err))
	}
	interval := cfg.CheckInterval
	if haveSettings {
		interval = settings.CheckInterval
	}

	gate := probe.NewDialGate()
	var prober probe.Prober = probe.NewHTTPProber(nil, cfg.ProbeTimeout)
	if cfg.RetryAttempts > 1 {
		prober = &probe.RetryProber{
			Inner:    prober,
			Attempts: cfg.RetryAttempts,
			Backoff:  cfg.RetryBackoff,
		}
	}

	notifier := notify.Multi{&notify.ZapNotifier{Logger: logger}}
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		notifier = append(notifier, slack)
	}

	sched := scheduler.New(
		logger,
		store,
		prober,
		gate,
		notifier,
		metrics.NewCollector(),
		interval,
		cfg.MaxConcurrentChecks,
	)
	go sched.Run(ctx)

	// The API's immediate first check goes through the gate too.
	apiProber := probe.NewHTTPProber(gate, cfg.ProbeTimeout)
	api := httpapi.NewServer(logger, store, apiProber, sched)

	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting_down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
