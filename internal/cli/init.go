package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitResult is the data payload of the init command.
type InitResult struct {
	Path string `json:"path"`
}

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or upgrade the local database",
		Long: `Create the data directory and database if needed, bring the schema
up to date, and print the database path.

Running init again is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.newFormatter(cmd)
	st, err := opts.openStore(f)
	if err != nil {
		return err
	}

	path, err := st.Init(commandContext(cmd))
	if err != nil {
		return fail(f, "init store", err)
	}

	if f.Format == "json" {
		return f.Success(InitResult{Path: path})
	}
	fmt.Fprintf(f.Writer, "Initialized store at %s\n", path)
	return nil
}
