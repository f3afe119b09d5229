package harness

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/vgreport/internal/contract"
	"github.com/roach88/vgreport/internal/report"
	"github.com/roach88/vgreport/internal/store"
	"github.com/roach88/vgreport/internal/testutil"
)

// Harness executes scenario steps against one store with a deterministic
// clock and evidence ID sequence.
type Harness struct {
	store  *store.Store
	clock  *testutil.StepClock
	ids    *testutil.SequenceIDGenerator
	logger *slog.Logger
}

// Run executes a scenario against a fresh store in a temporary directory
// and returns the result. The directory is removed afterwards.
//
// Step outcomes that differ from their expect clause and failed assertions
// are reported in Result.Errors. A non-nil error means the scenario could
// not be executed at all.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "vgreport-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	return runInDir(ctx, scenario, dir)
}

func runInDir(ctx context.Context, scenario *Scenario, dir string) (*Result, error) {
	h := &Harness{
		clock:  testutil.NewStepClock(),
		ids:    testutil.NewSequenceIDGenerator("ev"),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in scenarios
	}

	st, err := store.Open(dir,
		store.WithClock(h.clock),
		store.WithIDGenerator(h.ids),
		store.WithLogger(h.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario store: %w", err)
	}
	h.store = st

	if err := seedPeriods(ctx, st.Path(), scenario.Periods); err != nil {
		return nil, fmt.Errorf("failed to seed periods: %w", err)
	}

	result := NewResult()
	for _, step := range scenario.Steps {
		outcome, message := outcomeOf(h.executeStep(ctx, step))
		seq := result.AddStep(step.Op, step.Args, outcome, message)

		want := step.Expect
		if want == "" {
			want = OutcomeOK
		}
		if outcome != want {
			msg := fmt.Sprintf("step %d (%s): expected %s, got %s", seq, step.Op, want, outcome)
			if message != "" {
				msg += ": " + message
			}
			result.AddError(msg)
		}
	}

	snapshot, err := h.snapshot(ctx, scenario, result.Trace)
	if err != nil {
		return nil, fmt.Errorf("failed to capture snapshot: %w", err)
	}
	result.Snapshot = snapshot

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// executeStep runs one operation. Payload steps go through the same
// contract validation as the command line.
func (h *Harness) executeStep(ctx context.Context, step Step) error {
	payload, err := json.Marshal(step.Args)
	if err != nil {
		return &contract.Error{Field: "args", Message: err.Error()}
	}

	switch step.Op {
	case OpUpsertStudent:
		st, err := contract.DecodeStudent(payload)
		if err != nil {
			return err
		}
		return h.store.UpsertStudent(ctx, st)

	case OpDeleteStudent:
		id, _ := step.Args["id"].(string)
		if id == "" {
			return &contract.Error{Field: "id", Message: "id is required"}
		}
		return h.store.DeleteStudent(ctx, id)

	case OpUpsertDraft:
		d, err := contract.DecodeDraft(payload)
		if err != nil {
			return err
		}
		return h.store.UpsertDraft(ctx, d)

	case OpSetSetting:
		key, _ := step.Args["key"].(string)
		if key == "" {
			return &contract.Error{Field: "key", Message: "key is required"}
		}
		value, ok := step.Args["value"]
		if !ok {
			return &contract.Error{Field: "value", Message: "value is required"}
		}
		return h.store.SetSetting(ctx, key, value)

	case OpAddEvidence:
		e, err := contract.DecodeEvidence(payload)
		if err != nil {
			return err
		}
		_, err = h.store.AddEvidence(ctx, e.StudentID, e.Text, e.Tags)
		return err

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

// outcomeOf classifies a step error.
func outcomeOf(err error) (outcome, message string) {
	if err == nil {
		return OutcomeOK, ""
	}
	var contractErr *contract.Error
	if errors.As(err, &contractErr) {
		return OutcomeContract, err.Error()
	}
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return string(storeErr.Kind), err.Error()
	}
	return OutcomeError, err.Error()
}

// snapshot reads back the state selected by the scenario.
func (h *Harness) snapshot(ctx context.Context, scenario *Scenario, trace []TraceEvent) (*Snapshot, error) {
	snap := &Snapshot{
		Scenario: scenario.Name,
		Trace:    trace,
		Drafts:   []report.StoredDraft{},
		Settings: []SettingRow{},
		Evidence: []report.EvidenceSnippet{},
	}

	var err error
	if snap.Students, err = h.store.ListStudents(ctx); err != nil {
		return nil, err
	}
	if snap.Periods, err = h.store.ListReportPeriods(ctx); err != nil {
		return nil, err
	}

	for _, periodID := range scenario.Snapshot.Drafts {
		drafts, err := h.store.ListDrafts(ctx, periodID)
		if err != nil {
			return nil, err
		}
		for _, d := range drafts {
			snap.Drafts = append(snap.Drafts, d.Stored())
		}
	}
	sort.Slice(snap.Drafts, func(i, j int) bool {
		return snap.Drafts[i].ID < snap.Drafts[j].ID
	})

	for _, key := range scenario.Snapshot.Settings {
		value, found, err := h.store.GetSetting(ctx, key)
		if err != nil {
			return nil, err
		}
		snap.Settings = append(snap.Settings, SettingRow{Key: key, Found: found, Value: value})
	}

	for _, studentID := range scenario.Snapshot.Evidence {
		snippets, err := h.store.ListEvidence(ctx, studentID)
		if err != nil {
			return nil, err
		}
		snap.Evidence = append(snap.Evidence, snippets...)
	}

	return snap, nil
}

// seedPeriods writes report period rows directly, standing in for the
// collaborator that owns that table.
func seedPeriods(ctx context.Context, path string, periods []PeriodSeed) error {
	if len(periods) == 0 {
		return nil
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, p := range periods {
		_, err := db.ExecContext(ctx, `
			INSERT INTO report_periods (id, name, board_id, is_active, locked_at)
			VALUES (?, ?, ?, ?, ?)
		`, p.ID, nullIfEmpty(p.Name), nullIfEmpty(p.BoardID), p.Active, nullIfEmpty(p.LockedAt))
		if err != nil {
			return fmt.Errorf("insert period %q: %w", p.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
