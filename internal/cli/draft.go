package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/vgreport/internal/contract"
	"github.com/roach88/vgreport/internal/report"
)

// NewDraftCommand creates the draft command group.
func NewDraftCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Read and write report drafts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <period-id>",
		Short: "List every draft in a report period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftList(opts, cmd, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upsert <json|->",
		Short: "Create or replace a draft by its natural key",
		Long: `Write a draft. A draft is identified by student, report period, frame
and section; writing the same four values again replaces the existing
draft instead of adding another.

author defaults to "teacher" and status to "approved".

Example:
  vgreport draft upsert '{"studentId":"S1","reportPeriodId":"initial","frame":"kindergarten","section":"key_learning","slotValues":{"strength":"counting"}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftUpsert(opts, cmd, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "review <period-id>",
		Short: "List drafts written by an ECE that still need approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftReview(opts, cmd, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status <period-id>",
		Short: "Show how many report boxes are ready for each student",
		Long: `Show, for every student on the roster, how many of the report boxes
(frame x section) have approved, non-empty text, and whether any of the
student's drafts are waiting for review.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftStatus(opts, cmd, args[0])
		},
	})

	return cmd
}

func runDraftList(opts *RootOptions, cmd *cobra.Command, periodID string) error {
	f := opts.newFormatter(cmd)
	st, err := opts.openStore(f)
	if err != nil {
		return err
	}

	drafts, err := st.ListDrafts(commandContext(cmd), periodID)
	if err != nil {
		return fail(f, "list drafts", err)
	}

	stored := make([]report.StoredDraft, 0, len(drafts))
	for _, d := range drafts {
		stored = append(stored, d.Stored())
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].ID < stored[j].ID })

	if f.Format == "json" {
		return f.Success(stored)
	}
	if len(stored) == 0 {
		fmt.Fprintf(f.Writer, "No drafts in %s.\n", periodID)
		return nil
	}
	for _, d := range stored {
		text := "(no text)"
		if d.RenderedText != nil && *d.RenderedText != "" {
			text = *d.RenderedText
		}
		fmt.Fprintf(f.Writer, "%s  %s/%s  %s\n", d.ID, d.AuthorOrDefault(), d.StatusOrDefault(), text)
	}
	return nil
}

func runDraftUpsert(opts *RootOptions, cmd *cobra.Command, arg string) error {
	f := opts.newFormatter(cmd)

	payload, err := readPayload(cmd, arg)
	if err != nil {
		return failWith(f, ErrCodeInvalidArgs, ExitCommandError, err.Error())
	}
	draft, err := contract.DecodeDraft(payload)
	if err != nil {
		return fail(f, "invalid draft", err)
	}

	st, err := opts.openStore(f)
	if err != nil {
		return err
	}
	if err := st.UpsertDraft(commandContext(cmd), draft); err != nil {
		return fail(f, "upsert draft", err)
	}

	stored := draft.Stored()
	if f.Format == "json" {
		return f.Success(stored)
	}
	fmt.Fprintf(f.Writer, "Saved draft %s\n", stored.ID)
	return nil
}

func runDraftReview(opts *RootOptions, cmd *cobra.Command, periodID string) error {
	f := opts.newFormatter(cmd)
	st, err := opts.openStore(f)
	if err != nil {
		return err
	}

	drafts, err := st.ListDraftsNeedingReview(commandContext(cmd), periodID)
	if err != nil {
		return fail(f, "list drafts needing review", err)
	}

	stored := make([]report.StoredDraft, 0, len(drafts))
	for _, d := range drafts {
		stored = append(stored, d.Stored())
	}

	if f.Format == "json" {
		return f.Success(stored)
	}
	if len(stored) == 0 {
		fmt.Fprintf(f.Writer, "No drafts need review in %s.\n", periodID)
		return nil
	}
	for _, d := range stored {
		fmt.Fprintf(f.Writer, "%s  %s\n", d.ID, d.StatusOrDefault())
	}
	return nil
}

func runDraftStatus(opts *RootOptions, cmd *cobra.Command, periodID string) error {
	f := opts.newFormatter(cmd)
	st, err := opts.openStore(f)
	if err != nil {
		return err
	}

	summaries, err := st.PeriodReadiness(commandContext(cmd), periodID)
	if err != nil {
		return fail(f, "read period status", err)
	}

	if f.Format == "json" {
		return f.Success(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(f.Writer, "No students.")
		return nil
	}
	for _, r := range summaries {
		line := fmt.Sprintf("%s  %s  %d/%d ready", r.StudentID, r.Name, r.Ready, r.Total)
		if r.NeedsReview {
			line += "  needs review"
		}
		fmt.Fprintln(f.Writer, line)
	}
	return nil
}
