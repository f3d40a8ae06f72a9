// Command ledgerctl manages the ledger database from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/storage"
)

// app is the state shared by every subcommand, opened in the root
// PersistentPreRunE and closed in PersistentPostRunE.
type app struct {
	cfg       *config.Config
	logger    *log.Logger
	repo      *storage.SQLiteRepository
	publisher *amqp.Client
	svc       *cli.Wiring
	now       func() time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	var (
		dbPath   string
		logLevel string
	)

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Manage the personal ledger",
		Long: `ledgerctl records transactions, manages tags and recurring expenses,
and prints per-tag statistics straight from the ledger database.

Examples:
  # Record a lunch in the default currency
  ledgerctl tx add 12.50 --tag 1 --note lunch

  # Expense breakdown for March 2024
  ledgerctl stats --month 2024-03`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd, dbPath, logLevel)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: $SQLITE_DB_PATH or ./data/ledger.db)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(tagsCmd(a))
	root.AddCommand(txCmd(a))
	root.AddCommand(statsCmd(a))
	root.AddCommand(recurringCmd(a))
	root.AddCommand(settingsCmd(a))

	return root
}

func (a *app) open(cmd *cobra.Command, dbPath, logLevel string) error {
	cfg := config.Load()
	if dbPath != "" {
		cfg.SQLiteDBPath = dbPath
	}
	cfg.LogLevel = logLevel
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = log.New(log.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: log.ComponentCLI,
		Output:    cmd.ErrOrStderr(),
	})
	log.SetDefault(a.logger)

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.repo = repo

	var publisher services.EventPublisher
	if client, err := cli.InitPublisher(a.logger, cfg); err != nil {
		a.logger.Warn("Ledger events disabled", "error", err)
	} else if client != nil {
		a.publisher = client
		publisher = client
	}

	a.svc, err = cli.WireServices(cmd.Context(), cfg, repo, publisher)
	return err
}

func (a *app) close() error {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if a.repo != nil {
		return a.repo.Close()
	}
	return nil
}

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
