package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/vgreport/internal/contract"
)

// NewEvidenceCommand creates the evidence command group.
func NewEvidenceCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evidence",
		Short: "Manage evidence snippets recorded for students",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <student-id>",
		Short: "List a student's evidence, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvidenceList(opts, cmd, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <json|->",
		Short: "Record an evidence snippet",
		Long: `Record an evidence snippet for a student.

Example:
  vgreport evidence add '{"studentId":"S1","text":"Counted to 20.","tags":["math"]}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvidenceAdd(opts, cmd, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an evidence snippet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvidenceDelete(opts, cmd, args[0])
		},
	})

	return cmd
}

func runEvidenceList(opts *RootOptions, cmd *cobra.Command, studentID string) error {
	f := opts.newFormatter(cmd)
	st, err := opts.openStore(f)
	if err != nil {
		return err
	}

	snippets, err := st.ListEvidence(commandContext(cmd), studentID)
	if err != nil {
		return fail(f, "list evidence", err)
	}

	if f.Format == "json" {
		return f.Success(snippets)
	}
	if len(snippets) == 0 {
		fmt.Fprintf(f.Writer, "No evidence for %s.\n", studentID)
		return nil
	}
	for _, e := range snippets {
		line := fmt.Sprintf("%s  %s  %s", e.ID, e.CreatedAt, e.Text)
		if len(e.Tags) > 0 {
			line += "  [" + strings.Join(e.Tags, ", ") + "]"
		}
		fmt.Fprintln(f.Writer, line)
	}
	return nil
}

func runEvidenceAdd(opts *RootOptions, cmd *cobra.Command, arg string) error {
	f := opts.newFormatter(cmd)

	payload, err := readPayload(cmd, arg)
	if err != nil {
		return failWith(f, ErrCodeInvalidArgs, ExitCommandError, err.Error())
	}
	ev, err := contract.DecodeEvidence(payload)
	if err != nil {
		return fail(f, "invalid evidence", err)
	}

	st, err := opts.openStore(f)
	if err != nil {
		return err
	}
	snippet, err := st.AddEvidence(commandContext(cmd), ev.StudentID, ev.Text, ev.Tags)
	if err != nil {
		return fail(f, "add evidence", err)
	}

	if f.Format == "json" {
		return f.Success(snippet)
	}
	fmt.Fprintf(f.Writer, "Added evidence %s\n", snippet.ID)
	return nil
}

func runEvidenceDelete(opts *RootOptions, cmd *cobra.Command, id string) error {
	f := opts.newFormatter(cmd)
	st, err := opts.openStore(f)
	if err != nil {
		return err
	}

	if err := st.DeleteEvidence(commandContext(cmd), id); err != nil {
		return fail(f, "delete evidence", err)
	}

	if f.Format == "json" {
		return f.Success(map[string]string{"id": id})
	}
	fmt.Fprintf(f.Writer, "Deleted evidence %s\n", id)
	return nil
}
