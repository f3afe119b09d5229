package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/vgreport/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DataDir string

	// Logger is configured from Verbose before any subcommand runs.
	Logger *slog.Logger

	// StoreOptions are passed to store.Open (for testing).
	StoreOptions []store.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the vgreport CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vgreport",
		Short: "vgreport - local report store",
		Long: `Manage the local store behind the report card writer.

Students, report drafts, evidence snippets and app settings live in one
SQLite database inside the data directory. Every command opens the
database, brings its schema up to date, does its work and closes it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			// Logs go to stderr so they never corrupt JSON output.
			logLevel := slog.LevelWarn
			if opts.Verbose {
				logLevel = slog.LevelDebug
			}
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: logLevel,
			})
			opts.Logger = slog.New(handler)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "",
		"data directory (default $"+EnvDataDir+", then the user config dir)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewSettingCommand(opts))
	cmd.AddCommand(NewStudentCommand(opts))
	cmd.AddCommand(NewDraftCommand(opts))
	cmd.AddCommand(NewPeriodCommand(opts))
	cmd.AddCommand(NewEvidenceCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openStore resolves the data directory and opens the store.
func (o *RootOptions) openStore(f *OutputFormatter) (*store.Store, error) {
	dir, err := ResolveDataDir(o.DataDir)
	if err != nil {
		return nil, failWith(f, ErrCodeEnvironment, ExitCommandError, err.Error())
	}

	logger := o.logger()
	storeOpts := append([]store.Option{store.WithLogger(logger)}, o.StoreOptions...)

	st, err := store.Open(dir, storeOpts...)
	if err != nil {
		return nil, fail(f, "open store", err)
	}
	logger.Debug("store ready", "path", st.Path())
	return st, nil
}

// logger returns the configured logger, or slog.Default before
// PersistentPreRunE has run.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// commandContext returns the command's context, or Background if unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newFormatter builds the output formatter for a command.
func (o *RootOptions) newFormatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}
