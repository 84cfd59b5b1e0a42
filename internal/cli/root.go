package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/stockroom/internal/config"
	"github.com/roach88/stockroom/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	DBDriver string // overrides STOCKROOM_DB_DRIVER when set
	DSN      string // overrides STOCKROOM_DB_DSN when set

	// engineOptions are appended when the engine is built (for testing).
	engineOptions []engine.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the stockroom CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stockroom",
		Short: "Order, position and stock bookkeeping",
		Long: `stockroom keeps customer orders, their positions and product stock
consistent: every unit reserved by a position is taken from stock, and
every unit released goes back.

Settings come from STOCKROOM_* environment variables; --db-driver and --db
override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			switch opts.DBDriver {
			case "", config.DriverSQLite, config.DriverPostgres:
				return nil
			default:
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid db driver %q: must be %s or %s", opts.DBDriver, config.DriverSQLite, config.DriverPostgres))
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBDriver, "db-driver", "", "storage driver (sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "db", "", "SQLite path or Postgres DSN")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewAdvanceCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewOrderCommand(opts))
	cmd.AddCommand(NewPositionCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}
