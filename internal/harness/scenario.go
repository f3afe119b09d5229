package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of store operations plus the checks to
// run against the resulting state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Periods are report period rows seeded before the first step.
	// The store never writes report periods itself.
	Periods []PeriodSeed `yaml:"periods,omitempty"`

	// Steps are executed in order against one store.
	Steps []Step `yaml:"steps"`

	// Snapshot selects which scoped state is captured after the last step.
	// Students and periods are always captured.
	Snapshot SnapshotSpec `yaml:"snapshot,omitempty"`

	// Assertions are evaluated against the snapshot.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// PeriodSeed is one report_periods row.
type PeriodSeed struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	BoardID  string `yaml:"board_id,omitempty"`
	Active   bool   `yaml:"active,omitempty"`
	LockedAt string `yaml:"locked_at,omitempty"`
}

// Step is one store operation.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Args is the operation payload.
	Args map[string]interface{} `yaml:"args"`

	// Expect is the expected outcome. Empty means "ok".
	Expect string `yaml:"expect,omitempty"`
}

// SnapshotSpec lists the scoped reads captured in the snapshot.
type SnapshotSpec struct {
	// Drafts lists report period IDs whose drafts are captured.
	Drafts []string `yaml:"drafts,omitempty"`

	// Settings lists setting keys to read.
	Settings []string `yaml:"settings,omitempty"`

	// Evidence lists student IDs whose evidence is captured.
	Evidence []string `yaml:"evidence,omitempty"`
}

// Assertion validates the trace or the snapshot.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Op is the step op (used by trace_count).
	Op string `yaml:"op,omitempty"`

	// Table is the snapshot table (used by row_count and final_state).
	Table string `yaml:"table,omitempty"`

	// Where filters snapshot rows. All fields must match exactly.
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected field values (used by final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Count is the expected number of occurrences or rows.
	Count int `yaml:"count,omitempty"`
}

// Step operations.
const (
	OpUpsertStudent = "upsert_student"
	OpDeleteStudent = "delete_student"
	OpUpsertDraft   = "upsert_draft"
	OpSetSetting    = "set_setting"
	OpAddEvidence   = "add_evidence"
)

// Assertion type constants.
const (
	AssertTraceCount = "trace_count"
	AssertRowCount   = "row_count"
	AssertFinalState = "final_state"
)

// Snapshot tables addressable by assertions.
const (
	TableStudents = "students"
	TablePeriods  = "periods"
	TableDrafts   = "drafts"
	TableSettings = "settings"
	TableEvidence = "evidence"
)

var validOps = map[string]bool{
	OpUpsertStudent: true,
	OpDeleteStudent: true,
	OpUpsertDraft:   true,
	OpSetSetting:    true,
	OpAddEvidence:   true,
}

var validTables = map[string]bool{
	TableStudents: true,
	TablePeriods:  true,
	TableDrafts:   true,
	TableSettings: true,
	TableEvidence: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "step:" vs "steps:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Periods))
	for i, p := range s.Periods {
		if p.ID == "" {
			return fmt.Errorf("periods[%d]: id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("periods[%d]: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
	}

	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if !validOps[step.Op] {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if step.Args == nil {
			return fmt.Errorf("steps[%d]: args is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertRowCount:
		if !validTables[a.Table] {
			return fmt.Errorf("assertions[%d]: unknown table %q for row_count", index, a.Table)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertFinalState:
		if !validTables[a.Table] {
			return fmt.Errorf("assertions[%d]: unknown table %q for final_state", index, a.Table)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
