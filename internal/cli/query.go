package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tabard/internal/sqlbuild"
	"github.com/roach88/tabard/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DBPath string
	Driver string
	DBName string
}

// NewQueryCommand creates the query command: one statement against the
// store, bypassing HTTP. This is the operator path for raw SQL; the
// HTTP raw-query route stays behind its own flag.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a SQL statement against the database",
		Long: `Run one SQL statement against the gateway's database and print the rows.

Rows print as one JSON object per line in text format, or as a single
JSON response with --format json. Statements that return no rows print
only the row count.

Example:
  tabard query --db ./gateway.db "SELECT * FROM main.users"
  tabard query --db ./gateway.db --format json "SELECT COUNT(*) AS n FROM main.users"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database file (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Driver, "driver", store.DriverCGO, "sql driver: sqlite3 (cgo) or sqlite (pure Go)")
	cmd.Flags().StringVar(&opts.DBName, "db-name", "main", "logical database name")

	return cmd
}

func runQuery(opts *QueryOptions, sql string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	gw, err := store.Open(store.Options{
		Driver:   opts.Driver,
		Path:     opts.DBPath,
		Database: opts.DBName,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := gw.Close(); closeErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error closing database: %v\n", closeErr)
		}
	}()

	ctx := cmd.Context()
	recs, err := gw.Query(ctx, sqlbuild.RawQuery(sql))
	if err != nil {
		return WrapExitError(ExitFailure, "query failed", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if formatter.Format == "json" {
		return formatter.Success(recs)
	}

	// Text: one JSON object per row, then the count.
	for _, rec := range recs {
		line, err := json.Marshal(rec)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to render row", err)
		}
		fmt.Fprintln(formatter.Writer, string(line))
	}
	fmt.Fprintf(formatter.Writer, "(%d rows)\n", len(recs))
	return nil
}
