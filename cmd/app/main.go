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

	"github.com/mearah/craftbom/internal/bom"
	"github.com/mearah/craftbom/internal/config"
	"github.com/mearah/craftbom/internal/database"
	"github.com/mearah/craftbom/internal/database/postgres"
	"github.com/mearah/craftbom/internal/server"
	"github.com/mearah/craftbom/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	if err := run(cfg); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns,
		database.DefaultMaxIdleTime, database.DefaultMaxLifetime)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if err := database.Migrate(ctx, dbPool); err != nil {
		return err
	}

	itemRepo := postgres.NewItemStore(dbPool)
	settings := postgres.NewSettingsStore(dbPool)

	bomService := bom.NewService(itemRepo,
		bom.WithMaxDepth(cfg.MaxDepth),
		bom.WithCache(cfg.CacheSize, cfg.CacheTTL),
	)
	reporter := bom.NewReporter(itemRepo, settings)

	pool := worker.NewPool(cfg.WorkerCount, cfg.QueueSize)
	pool.Start()
	defer pool.Stop()

	srv := server.NewServer(cfg.Port, dbPool, itemRepo, settings, bomService, reporter, pool)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
