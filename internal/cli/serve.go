package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/tabard/internal/config"
	"github.com/roach88/tabard/internal/httpapi"
	"github.com/roach88/tabard/internal/metrics"
	"github.com/roach88/tabard/internal/mirror"
	"github.com/roach88/tabard/internal/resolver"
	"github.com/roach88/tabard/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	DBPath     string
	Driver     string
	DBName     string
	Listen     string
	Backup     bool
	BackupURL  string
	RawQuery   bool
	Metrics    string
	TablesFile string

	// RequestIDs allows overriding the request id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RequestIDs httpapi.RequestIDGenerator
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST gateway",
		Long: `Start the HTTP gateway over the configured database.

Configuration comes from TABARD_* environment variables; any flag set
here overrides its environment counterpart. The database file is
created on first open if it does not exist.

Example:
  tabard serve --db ./gateway.db
  tabard serve --db ./gateway.db --tables ./tables.cue --listen :9090
  tabard serve --db ./gateway.db --backup --backup-url https://hooks.example.com/exec`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	registerServeFlags(cmd, opts)

	return cmd
}

func registerServeFlags(cmd *cobra.Command, opts *ServeOptions) {
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database file")
	cmd.Flags().StringVar(&opts.Driver, "driver", "", "sql driver: sqlite3 (cgo) or sqlite (pure Go)")
	cmd.Flags().StringVar(&opts.DBName, "db-name", "", "logical database name statements qualify tables with")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "gateway listen address")
	cmd.Flags().BoolVar(&opts.Backup, "backup", false, "mirror mutations to the backup webhook")
	cmd.Flags().StringVar(&opts.BackupURL, "backup-url", "", "backup webhook URL")
	cmd.Flags().BoolVar(&opts.RawQuery, "raw-query", false, "enable the verbatim SQL route")
	cmd.Flags().StringVar(&opts.Metrics, "metrics", "", "metrics listen address (empty disables)")
	cmd.Flags().StringVar(&opts.TablesFile, "tables", "", "CUE table map file")
}

// applyServeFlags lays explicitly-set flags over the environment
// configuration. Unset flags leave the environment values alone, so
// --backup=false can still force mirroring off.
func applyServeFlags(cfg *config.Config, opts *ServeOptions, cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = opts.DBPath
	}
	if flags.Changed("driver") {
		cfg.DBDriver = opts.Driver
	}
	if flags.Changed("db-name") {
		cfg.DBName = opts.DBName
	}
	if flags.Changed("listen") {
		cfg.ListenAddr = opts.Listen
	}
	if flags.Changed("backup") {
		cfg.BackupEnabled = opts.Backup
	}
	if flags.Changed("backup-url") {
		cfg.BackupURL = opts.BackupURL
	}
	if flags.Changed("raw-query") {
		cfg.RawQueryEnabled = opts.RawQuery
	}
	if flags.Changed("metrics") {
		cfg.MetricsAddr = opts.Metrics
	}
	if flags.Changed("tables") {
		cfg.TablesFile = opts.TablesFile
	}
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	cfg, err := config.FromEnv()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read environment", err)
	}
	applyServeFlags(&cfg, opts, cmd)
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	// Table map
	res := resolver.Default()
	if cfg.TablesFile != "" {
		mapping, err := config.LoadTables(cfg.TablesFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load table map", err)
		}
		res = resolver.New(mapping)
		slog.Info("table map loaded", "file", cfg.TablesFile, "labels", res.Len())
	}

	// Primary store
	slog.Info("opening database",
		"path", cfg.DBPath,
		"driver", cfg.DBDriver,
		"database", cfg.DBName,
	)
	gw, err := store.Open(store.Options{
		Driver:   cfg.DBDriver,
		Path:     cfg.DBPath,
		Database: cfg.DBName,
		User:     cfg.DBUser,
		Token:    cfg.DBToken,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := gw.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database ready")

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	// Mirror worker
	repl := mirror.New(mirror.Config{Enabled: cfg.BackupEnabled, URL: cfg.BackupURL})
	if repl.Enabled() {
		go func() {
			if err := repl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("mirror worker error", "error", err)
			}
		}()
	}

	// Metrics side listener
	if cfg.MetricsAddr != "" {
		go func() {
			slog.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := metrics.ListenAndServe(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics listener error", "error", err)
			}
		}()
	}

	srv := httpapi.New(httpapi.Options{
		Gateway:         gw,
		Resolver:        res,
		Mirror:          repl,
		RawQueryEnabled: cfg.RawQueryEnabled,
		RequestIDs:      opts.RequestIDs,
	})

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Listen(cfg.ListenAddr)
	}()

	slog.Info("gateway listening",
		"addr", cfg.ListenAddr,
		"database", cfg.DBName,
		"backup", cfg.BackupEnabled,
		"raw_query", cfg.RawQueryEnabled,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Gateway listening on %s\n", cfg.ListenAddr)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	select {
	case sig := <-sigChan:
		slog.Info("received signal, shutting down", "signal", sig)
	case <-ctx.Done():
		slog.Info("shutting down: context cancelled")
	case err := <-errChan:
		if err != nil {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	}

	if err := srv.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	repl.Stop()

	slog.Info("gateway stopped gracefully")
	return nil
}
