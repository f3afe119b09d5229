package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vgreport/internal/report"
)

// NewPeriodCommand creates the period command group.
// Report periods are read-only here.
func NewPeriodCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Inspect report periods",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List report periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeriodList(opts, cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one report period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeriodGet(opts, cmd, args[0])
		},
	})

	return cmd
}

func runPeriodList(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.newFormatter(cmd)
	st, err := opts.openStore(f)
	if err != nil {
		return err
	}

	periods, err := st.ListReportPeriods(commandContext(cmd))
	if err != nil {
		return fail(f, "list report periods", err)
	}

	if f.Format == "json" {
		return f.Success(periods)
	}
	if len(periods) == 0 {
		fmt.Fprintln(f.Writer, "No report periods.")
		return nil
	}
	for _, p := range periods {
		fmt.Fprintln(f.Writer, formatPeriod(p))
	}
	return nil
}

func runPeriodGet(opts *RootOptions, cmd *cobra.Command, id string) error {
	f := opts.newFormatter(cmd)
	st, err := opts.openStore(f)
	if err != nil {
		return err
	}

	period, found, err := st.GetReportPeriod(commandContext(cmd), id)
	if err != nil {
		return fail(f, "get report period", err)
	}
	if !found {
		return failWith(f, ErrCodeNotFound, ExitFailure, fmt.Sprintf("report period %q not found", id))
	}

	if f.Format == "json" {
		return f.Success(period)
	}
	fmt.Fprintln(f.Writer, formatPeriod(period))
	if period.BoardID != nil {
		fmt.Fprintf(f.Writer, "board: %s\n", *period.BoardID)
	}
	return nil
}

// formatPeriod renders one period line.
func formatPeriod(p report.ReportPeriod) string {
	line := p.ID
	if p.Name != nil {
		line += "  " + *p.Name
	}
	if p.Active() {
		line += "  (active)"
	}
	if p.LockedAt != nil {
		line += "  locked " + *p.LockedAt
	}
	return line
}
