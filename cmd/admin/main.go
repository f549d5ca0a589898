package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"bankapi/internal/domain/ledger"
	"bankapi/internal/infrastructure/postgres"
	"bankapi/internal/shared/config"
	"bankapi/internal/shared/logger"
)

const usage = `Bank API Admin CLI - Management commands for the Bank API

Usage:
  admin <command> [options]

Commands:
  migrate      Apply pending database schema migrations
  reconcile    Recompute every account balance from its transaction log

Examples:
  # Apply migrations
  admin migrate

  # Audit all balances with the default worker count
  admin reconcile

  # Run with custom worker count and timeout
  admin reconcile --workers=8 --timeout=10m
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "migrate":
		runMigrate(os.Args[2:])
	case "reconcile":
		runReconcile(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func runMigrate(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	timeout := fs.Duration("timeout", 5*time.Minute, "Timeout for the operation (e.g., 30s, 5m)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log, db := connect()
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	applied, err := postgres.Migrate(ctx, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	if applied == 0 {
		log.Info().Msg("no new migrations to apply; database is up to date")
		return
	}
	log.Info().Int("applied", applied).Msg("migrations applied")
}

func runReconcile(args []string) {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)

	workers := fs.Int("workers", ledger.DefaultWorkerCount, "Number of concurrent workers")
	timeout := fs.Duration("timeout", 30*time.Minute, "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin reconcile [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExit status is 1 when any account disagrees with its log.")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *workers < 1 {
		fmt.Println("Error: --workers must be at least 1")
		fs.Usage()
		os.Exit(1)
	}

	log, db := connect()
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Info().Int("workers", *workers).Msg("starting reconciliation")
	startTime := time.Now()

	reconciler := ledger.NewReconciler(postgres.NewUnitOfWorkFactory(db), *workers)
	report, err := reconciler.Run(logger.WithContext(ctx, log))
	if err != nil {
		log.Fatal().Err(err).Msg("reconciliation failed")
	}

	printReport(os.Stdout, report)
	log.Info().Dur("elapsed", time.Since(startTime)).Msg("reconciliation completed")

	if !report.OK() {
		db.Close()
		os.Exit(1)
	}
}

// connect loads configuration and opens the database, exiting on failure.
func connect() (zerolog.Logger, *postgres.DB) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	db, err := postgres.New(cfg.Database.ConnectionString(), postgres.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	log.Info().Msg("connected to database")
	return log, db
}

func printReport(w io.Writer, report *ledger.ReconcileReport) {
	fmt.Fprintf(w, "\n=== Reconciliation ===\n")
	fmt.Fprintf(w, "  Accounts checked: %d\n", report.Checked)
	fmt.Fprintf(w, "  Mismatches:       %d\n", len(report.Mismatches))

	for _, m := range report.Mismatches {
		fmt.Fprintf(w, "\n  Account %d (%s)\n", m.AccountID, m.AccountNumber)
		fmt.Fprintf(w, "    Stored balance: %s\n", m.Stored)
		fmt.Fprintf(w, "    From log:       %s\n", m.FromLog)
		fmt.Fprintf(w, "    Log entries:    %d\n", m.Entries)
	}
}
