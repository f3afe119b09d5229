package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/vgreport/internal/harness"
)

// ScenarioOptions holds flags for the scenario command.
type ScenarioOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario filter (glob pattern)
	GoldenDir string // overrides <scenario dir>/golden
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// ScenarioSummary holds the overall run result.
type ScenarioSummary struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewScenarioCommand creates the scenario command.
func NewScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScenarioOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scenario <file|dir>",
		Short: "Run YAML store scenarios",
		Long: `Run scenario files against a throwaway store.

Each scenario runs in its own temporary data directory with a fixed clock
and evidence ID sequence, so its snapshot is reproducible. When a golden
file named after the scenario exists, the snapshot must match it byte for
byte. The real data directory is never touched.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  vgreport scenario ./scenarios
  vgreport scenario ./scenarios --filter "draft_*"
  vgreport scenario ./scenarios/draft_lifecycle.yaml --update
  vgreport scenario ./scenarios --golden-dir ./golden --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "golden file directory (default <scenario dir>/golden)")

	return cmd
}

func runScenarios(opts *ScenarioOptions, target string, cmd *cobra.Command) error {
	f := opts.newFormatter(cmd)

	info, err := os.Stat(target)
	if err != nil {
		return failWith(f, ErrCodeNotFound, ExitCommandError, fmt.Sprintf("scenario path not found: %s", target))
	}

	var files []string
	if info.IsDir() {
		files, err = findScenarioFiles(target, opts.Filter)
		if err != nil {
			return failWith(f, ErrCodeInvalidArgs, ExitCommandError, fmt.Sprintf("failed to find scenarios: %v", err))
		}
	} else {
		files = []string{target}
	}

	summary := ScenarioSummary{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}

	if len(files) == 0 {
		if f.Format == "json" {
			return f.Success(summary)
		}
		fmt.Fprintln(f.Writer, "No scenarios found.")
		return nil
	}

	for _, file := range files {
		res := runScenario(opts, f, file, cmd)
		summary.Scenarios = append(summary.Scenarios, res)
		if res.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	if f.Format == "json" {
		if summary.Failed > 0 {
			message := fmt.Sprintf("%d scenario(s) failed", summary.Failed)
			_ = f.Error(ErrCodeScenarioFailed, message, summary)
			return &ExitError{Code: ExitFailure, Message: message, Reported: true}
		}
		return f.Success(summary)
	}

	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "Summary: %d passed, %d failed, %d total\n", summary.Passed, summary.Failed, summary.Total)
	if summary.Failed > 0 {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%d scenario(s) failed", summary.Failed),
			Reported: true,
		}
	}
	fmt.Fprintln(f.Writer, "All scenarios passed")
	return nil
}

// findScenarioFiles finds all YAML scenario files under dir.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario executes one scenario file and prints its line in text mode.
func runScenario(opts *ScenarioOptions, f *OutputFormatter, file string, cmd *cobra.Command) ScenarioResult {
	f.VerboseLog("running %s", file)
	res := evaluateScenario(opts, file, cmd)

	if f.Format != "json" {
		if res.Pass {
			fmt.Fprintf(f.Writer, "PASS %s\n", res.Name)
		} else {
			fmt.Fprintf(f.Writer, "FAIL %s\n", res.Name)
			for _, e := range res.Errors {
				fmt.Fprintf(f.Writer, "  %s\n", e)
			}
		}
	}
	return res
}

func evaluateScenario(opts *ScenarioOptions, file string, cmd *cobra.Command) ScenarioResult {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.Run(commandContext(cmd), scenario)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	rendered, err := result.Snapshot.Render()
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("failed to render snapshot: %v", err)},
		}
	}

	goldenPath := opts.goldenPath(file, scenario.Name)
	errs := append([]string(nil), result.Errors...)

	if opts.Update {
		if err := writeGoldenFile(goldenPath, rendered); err != nil {
			errs = append(errs, err.Error())
		}
		opts.logger().Debug("golden file updated", "scenario", scenario.Name, "path", goldenPath)
	} else {
		golden, err := os.ReadFile(goldenPath)
		switch {
		case os.IsNotExist(err):
			// No golden file: assertions alone decide.
		case err != nil:
			errs = append(errs, fmt.Sprintf("failed to read golden file: %v", err))
		case !bytes.Equal(golden, rendered):
			errs = append(errs, "snapshot does not match golden file (run with --update to regenerate)")
		}
	}

	return ScenarioResult{
		Name:   scenario.Name,
		Pass:   len(errs) == 0,
		Errors: errs,
	}
}

// goldenPath returns <golden dir>/<scenario name>.golden.
func (o *ScenarioOptions) goldenPath(scenarioFile, name string) string {
	dir := o.GoldenDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(scenarioFile), "golden")
	}
	return filepath.Join(dir, name+".golden")
}

// writeGoldenFile writes a snapshot, creating the directory if needed.
func writeGoldenFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}
