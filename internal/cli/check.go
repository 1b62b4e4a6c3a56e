package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/tabard/internal/config"
	"github.com/roach88/tabard/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	DBPath string
	Driver string
}

// CheckResult holds table-map validation results.
type CheckResult struct {
	Valid  bool              `json:"valid"`
	Tables map[string]string `json:"tables,omitempty"`
}

// NewCheckCommand creates the check command. It validates deployment
// configuration before rollout: the CUE table map parses, every
// canonical name is a legal identifier, and, when --db is given, the
// database opens and answers.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <tables-file>",
		Short: "Validate a table map file",
		Long: `Validate a CUE table map without starting the gateway.

Checks that the file parses, that it declares a non-empty tables
struct, and that every canonical name is a plain SQL identifier.
With --db, also verifies the database opens.

Example:
  tabard check ./tables.cue
  tabard check ./tables.cue --db ./gateway.db --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "also verify this database opens")
	cmd.Flags().StringVar(&opts.Driver, "driver", store.DriverCGO, "sql driver: sqlite3 (cgo) or sqlite (pure Go)")

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	mapping, err := config.LoadTables(path)
	if err != nil {
		var te *config.TablesError
		if errors.As(err, &te) {
			_ = formatter.Error(te.Code, te.Message, nil)
			// A missing file is a command error; bad content is a
			// validation failure.
			code := ExitFailure
			if te.Code == config.ErrCodeTablesNotFound {
				code = ExitCommandError
			}
			return NewExitError(code, te.Error())
		}
		_ = formatter.Error("T000", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load table map", err)
	}

	formatter.VerboseLog("Loaded %d table mapping(s) from %s", len(mapping), path)

	if opts.DBPath != "" {
		gw, err := store.Open(store.Options{Driver: opts.Driver, Path: opts.DBPath})
		if err != nil {
			_ = formatter.Error("T010", fmt.Sprintf("database check failed: %v", err), nil)
			return WrapExitError(ExitCommandError, "database check failed", err)
		}
		_ = gw.Close()
		formatter.VerboseLog("Database %s opens cleanly", opts.DBPath)
	}

	if formatter.Format == "json" {
		return formatter.Success(CheckResult{Valid: true, Tables: mapping})
	}

	fmt.Fprintf(formatter.Writer, "✓ table map valid (%d labels)\n", len(mapping))
	if opts.Verbose {
		labels := make([]string, 0, len(mapping))
		for label := range mapping {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(formatter.Writer, "  %q -> %s\n", label, mapping[label])
		}
	}
	return nil
}
