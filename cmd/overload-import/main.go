package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/overload/internal/config"
	"github.com/claude/overload/internal/importer"
	"github.com/claude/overload/internal/ingest/alpha"
	"github.com/claude/overload/internal/session"
	"github.com/claude/overload/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "directory of Alpha Progression CSV exports (required)")
	login := flag.String("user", "", "tailnet login to import for (default: local user)")
	dryRun := flag.Bool("dry-run", false, "parse and count sessions without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: overload-import -config config.yaml -path /path/to/exports [-user login] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*exportPath)
	if err != nil || !info.IsDir() {
		log.Error("export path does not exist or is not a directory", "path", *exportPath)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: nothing will be written to the database")
		stats, err := importer.New(nil, storage.LocalUser, log, true).Import(ctx, *exportPath)
		printStats(log, stats)
		if err != nil {
			log.Error("import failed", "error", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	userID := storage.LocalUser
	if *login != "" {
		userID, err = db.GetOrCreateUser(ctx, *login, *login)
		if err != nil {
			log.Error("failed to resolve user", "login", *login, "error", err)
			os.Exit(1)
		}
	}

	provider := alpha.NewProvider(db, session.NewCompleter(db, log), log)
	stats, err := importer.New(provider, userID, log, false).Import(ctx, *exportPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_errored", stats.FilesErrored,
		"sessions_found", stats.SessionsFound,
		"sessions_overlapped", stats.SessionsOverlapped,
		"sessions_imported", stats.SessionsImported,
		"sessions_duplicate", stats.SessionsDuplicate,
		"sets_inserted", stats.SetsInserted,
		"progressions", stats.Progressions,
	)
	if len(stats.Skipped) > 0 {
		log.Info("exercises not progressed", "exercises", stats.Skipped)
	}
}
