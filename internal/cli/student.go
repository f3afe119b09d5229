package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/vgreport/internal/contract"
	"github.com/roach88/vgreport/internal/report"
	"github.com/roach88/vgreport/internal/roster"
)

// NewStudentCommand creates the student command group.
func NewStudentCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Manage the student roster",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List students by last name, then first name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudentList(opts, cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upsert <json|->",
		Short: "Create or replace a student",
		Long: `Create a student, or replace every field of the student with the same id.

Example:
  vgreport student upsert '{"id":"S1","firstName":"Ada","lastName":"Byron","needs":["ELL"]}'
  vgreport student upsert - < student.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudentUpsert(opts, cmd, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student and all of their drafts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudentDelete(opts, cmd, args[0])
		},
	})

	var dryRun bool
	importCmd := &cobra.Command{
		Use:   "import <csv|->",
		Short: "Add or update students from a roster CSV",
		Long: `Read a roster CSV and add or update one student per row.

The header row must name first_name and last_name. Optional columns are
student_local_id, preferred_name, pronouns_subject, pronouns_object,
pronouns_possessive and needs (separated by ";"). A row matches an
existing student by student_local_id, or else by first and last name.
Empty cells keep the existing value.

Rows with errors are skipped and reported; the other rows are still
imported, one student at a time.

Example:
  vgreport student import roster.csv
  vgreport student import --dry-run - < roster.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudentImport(opts, cmd, args[0], dryRun)
		},
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	cmd.AddCommand(importCmd)

	return cmd
}

func runStudentList(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.newFormatter(cmd)
	st, err := opts.openStore(f)
	if err != nil {
		return err
	}

	students, err := st.ListStudents(commandContext(cmd))
	if err != nil {
		return fail(f, "list students", err)
	}

	if f.Format == "json" {
		return f.Success(students)
	}
	if len(students) == 0 {
		fmt.Fprintln(f.Writer, "No students.")
		return nil
	}
	for _, s := range students {
		fmt.Fprintln(f.Writer, formatStudent(s))
	}
	return nil
}

// formatStudent renders one roster line.
func formatStudent(s report.Student) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s, %s", s.ID, s.LastName, s.FirstName)
	if name := s.DisplayName(); name != s.FirstName {
		fmt.Fprintf(&b, " (%s)", name)
	}
	fmt.Fprintf(&b, "  %s/%s/%s", s.Pronouns.Subject, s.Pronouns.Object, s.Pronouns.Possessive)
	if len(s.Needs) > 0 {
		fmt.Fprintf(&b, "  [%s]", strings.Join(s.Needs, ", "))
	}
	return b.String()
}

func runStudentUpsert(opts *RootOptions, cmd *cobra.Command, arg string) error {
	f := opts.newFormatter(cmd)

	payload, err := readPayload(cmd, arg)
	if err != nil {
		return failWith(f, ErrCodeInvalidArgs, ExitCommandError, err.Error())
	}
	student, err := contract.DecodeStudent(payload)
	if err != nil {
		return fail(f, "invalid student", err)
	}

	st, err := opts.openStore(f)
	if err != nil {
		return err
	}
	if err := st.UpsertStudent(commandContext(cmd), student); err != nil {
		return fail(f, "upsert student", err)
	}

	if f.Format == "json" {
		return f.Success(student)
	}
	fmt.Fprintf(f.Writer, "Saved student %s\n", student.ID)
	return nil
}

func runStudentDelete(opts *RootOptions, cmd *cobra.Command, id string) error {
	f := opts.newFormatter(cmd)
	st, err := opts.openStore(f)
	if err != nil {
		return err
	}

	if err := st.DeleteStudent(commandContext(cmd), id); err != nil {
		return fail(f, "delete student", err)
	}

	if f.Format == "json" {
		return f.Success(map[string]string{"id": id})
	}
	fmt.Fprintf(f.Writer, "Deleted student %s\n", id)
	return nil
}

// ImportResult reports what a roster import did.
type ImportResult struct {
	Added    []string `json:"added"`
	Updated  []string `json:"updated"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
	DryRun   bool     `json:"dryRun"`
}

func runStudentImport(opts *RootOptions, cmd *cobra.Command, arg string, dryRun bool) error {
	f := opts.newFormatter(cmd)

	data, err := readRoster(cmd, arg)
	if err != nil {
		return failWith(f, ErrCodeInvalidArgs, ExitCommandError, err.Error())
	}
	parsed, err := roster.Parse(bytes.NewReader(data))
	if err != nil {
		return failWith(f, ErrCodeInvalidArgs, ExitCommandError, fmt.Sprintf("invalid roster: %v", err))
	}

	st, err := opts.openStore(f)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	existing, err := st.ListStudents(ctx)
	if err != nil {
		return fail(f, "list students", err)
	}
	plan := roster.BuildPlan(parsed.Rows, existing, idFunc(st.NewID))

	result := ImportResult{
		Added:    []string{},
		Updated:  []string{},
		Warnings: plan.Warnings,
		Errors:   append(parsed.Errors, plan.Errors...),
		DryRun:   dryRun,
	}

	write := func(students []report.Student, ids *[]string) error {
		for _, student := range students {
			if !dryRun {
				if err := st.UpsertStudent(ctx, student); err != nil {
					return fail(f, fmt.Sprintf("import student %s", student.ID), err)
				}
			}
			*ids = append(*ids, student.ID)
		}
		return nil
	}
	if err := write(plan.ToAdd, &result.Added); err != nil {
		return err
	}
	if err := write(plan.ToUpdate, &result.Updated); err != nil {
		return err
	}
	opts.logger().Debug("roster imported",
		"added", len(result.Added), "updated", len(result.Updated),
		"rejected", len(result.Errors), "dry_run", dryRun)

	if len(result.Errors) > 0 {
		message := fmt.Sprintf("%d roster row(s) rejected", len(result.Errors))
		if f.Format == "json" {
			_ = f.Error(ErrCodeRowsRejected, message, result)
		} else {
			printImport(f, result)
			_ = f.Error(ErrCodeRowsRejected, message, nil)
		}
		return &ExitError{Code: ExitFailure, Message: message, Reported: true}
	}

	if f.Format == "json" {
		return f.Success(result)
	}
	printImport(f, result)
	return nil
}

func printImport(f *OutputFormatter, r ImportResult) {
	for _, w := range r.Warnings {
		fmt.Fprintln(f.Writer, "warning: "+w)
	}
	for _, e := range r.Errors {
		fmt.Fprintln(f.Writer, "error: "+e)
	}
	verb := "Imported"
	if r.DryRun {
		verb = "Would import"
	}
	fmt.Fprintf(f.Writer, "%s %d new, %d updated\n", verb, len(r.Added), len(r.Updated))
}

// readRoster returns the named file, or stdin when arg is "-".
func readRoster(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg == stdinArg {
		return readPayload(cmd, arg)
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}
	return data, nil
}

// idFunc adapts a function to roster.IDGenerator.
type idFunc func() string

func (fn idFunc) Generate() string { return fn() }
