// Command migrate moves recipe data in and out of the store: a one-time
// migration from the legacy JSON index files, plus CSV import/export.
//
// Usage:
//
//	migrate json <data-dir>
//	migrate import <items.csv> <requirements.csv>
//	migrate export <items.csv> <requirements.csv>
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mearah/craftbom/internal/config"
	"github.com/mearah/craftbom/internal/database"
	"github.com/mearah/craftbom/internal/database/postgres"
	"github.com/mearah/craftbom/internal/importer"
	"github.com/mearah/craftbom/internal/logger"
	"github.com/mearah/craftbom/internal/repository"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.InitLogger(logger.NewConfig(cfg.LogLevel, cfg.LogFormat, "craftbom-migrate", "dev", cfg.Environment, false))

	if err := run(cfg, os.Args[1], os.Args[2:]); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, command string, args []string) error {
	ctx := context.Background()

	dbPool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns,
		database.DefaultMaxIdleTime, database.DefaultMaxLifetime)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if err := database.Migrate(ctx, dbPool); err != nil {
		return err
	}

	repo := postgres.NewItemStore(dbPool)

	switch command {
	case "json":
		if len(args) != 1 {
			usage()
			return fmt.Errorf("json: expected <data-dir>")
		}
		return migrateJSON(ctx, repo, args[0])
	case "import":
		if len(args) != 2 {
			usage()
			return fmt.Errorf("import: expected <items.csv> <requirements.csv>")
		}
		return importCSV(ctx, repo, args[0], args[1])
	case "export":
		if len(args) != 2 {
			usage()
			return fmt.Errorf("export: expected <items.csv> <requirements.csv>")
		}
		return exportCSV(ctx, repo, args[0], args[1])
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func importCSV(ctx context.Context, repo repository.Item, itemsPath, reqsPath string) error {
	items, err := os.Open(itemsPath)
	if err != nil {
		return fmt.Errorf("failed to open item file: %w", err)
	}
	defer items.Close()

	reqs, err := os.Open(reqsPath)
	if err != nil {
		return fmt.Errorf("failed to open requirement file: %w", err)
	}
	defer reqs.Close()

	return importer.New(repo).Import(ctx, items, reqs)
}

func exportCSV(ctx context.Context, repo repository.Item, itemsPath, reqsPath string) error {
	im := importer.New(repo)

	items, err := os.Create(itemsPath)
	if err != nil {
		return fmt.Errorf("failed to create item file: %w", err)
	}
	defer items.Close()
	if err := im.ExportItems(ctx, items); err != nil {
		return err
	}

	reqs, err := os.Create(reqsPath)
	if err != nil {
		return fmt.Errorf("failed to create requirement file: %w", err)
	}
	defer reqs.Close()
	return im.ExportRequirements(ctx, reqs)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  migrate json <data-dir>                     migrate legacy JSON index files
  migrate import <items.csv> <requirements.csv>
  migrate export <items.csv> <requirements.csv>`)
}
