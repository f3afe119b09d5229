package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func studentStep(id, first, last string) Step {
	return Step{
		Op:   OpUpsertStudent,
		Args: map[string]interface{}{"id": id, "firstName": first, "lastName": last},
	}
}

func draftStep(studentID, period, section string) Step {
	return Step{
		Op: OpUpsertDraft,
		Args: map[string]interface{}{
			"studentId":      studentID,
			"reportPeriodId": period,
			"frame":          "kindergarten",
			"section":        section,
		},
	}
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "one student",
		Steps:       []Step{studentStep("S1", "Ada", "Byron")},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, TraceEvent{
		Seq:     1,
		Op:      OpUpsertStudent,
		Args:    scenario.Steps[0].Args,
		Outcome: OutcomeOK,
	}, result.Trace[0])

	require.NotNil(t, result.Snapshot)
	require.Len(t, result.Snapshot.Students, 1)
	assert.Equal(t, "Ada", result.Snapshot.Students[0].FirstName)
	assert.Empty(t, result.Snapshot.Drafts)
	assert.Empty(t, result.Snapshot.Periods)
}

func TestRun_ExpectedFailures(t *testing.T) {
	scenario := &Scenario{
		Name:        "failures",
		Description: "steps that fail as expected",
		Steps: []Step{
			{
				Op:     OpUpsertDraft,
				Args:   map[string]interface{}{"studentId": "S:1", "reportPeriodId": "p", "frame": "f", "section": "s"},
				Expect: OutcomeContract,
			},
			{
				Op:     OpUpsertStudent,
				Args:   map[string]interface{}{"firstName": "No", "lastName": "Id"},
				Expect: OutcomeContract,
			},
			{
				Op:     OpSetSetting,
				Args:   map[string]interface{}{"value": 1},
				Expect: OutcomeContract,
			},
			{
				Op:   OpDeleteStudent,
				Args: map[string]interface{}{"id": "nobody"},
			},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, OutcomeContract, result.Trace[i].Outcome)
		assert.NotEmpty(t, result.Trace[i].Message)
	}
	assert.Equal(t, OutcomeOK, result.Trace[3].Outcome)
}

func TestRun_UnexpectedOutcomeFailsScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected",
		Description: "a failing step without an expect clause",
		Steps: []Step{
			studentStep("S1", "Ada", "Byron"),
			{Op: OpAddEvidence, Args: map[string]interface{}{"studentId": "S1", "text": ""}},
			studentStep("S2", "Alan", "Turing"),
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "step 2 (add_evidence): expected ok, got CONTRACT")

	// Later steps still run.
	assert.Len(t, result.Snapshot.Students, 2)
}

func TestRun_DraftKeyCollision(t *testing.T) {
	scenario := &Scenario{
		Name:        "collision",
		Description: "same natural key written twice",
		Steps: []Step{
			draftStep("S1", "initial", "key_learning"),
			draftStep("S1", "initial", "key_learning"),
			draftStep("S1", "initial", "next_steps_in_learning"),
		},
		Snapshot: SnapshotSpec{Drafts: []string{"initial"}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Snapshot.Drafts, 2)
	assert.Equal(t, "S1:initial:kindergarten:key_learning", result.Snapshot.Drafts[0].ID)
	assert.Equal(t, "S1:initial:kindergarten:next_steps_in_learning", result.Snapshot.Drafts[1].ID)
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/draft_lifecycle.yaml")
	require.NoError(t, err)

	first, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	second, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	a, err := first.Snapshot.Render()
	require.NoError(t, err)
	b, err := second.Snapshot.Render()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_FreshStorePerRun(t *testing.T) {
	ctx := context.Background()

	_, err := Run(ctx, &Scenario{
		Name:        "first",
		Description: "writes a student",
		Steps:       []Step{studentStep("S1", "Ada", "Byron")},
	})
	require.NoError(t, err)

	result, err := Run(ctx, &Scenario{
		Name:        "second",
		Description: "writes another student",
		Steps:       []Step{studentStep("S2", "Alan", "Turing")},
	})
	require.NoError(t, err)

	require.Len(t, result.Snapshot.Students, 1)
	assert.Equal(t, "S2", result.Snapshot.Students[0].ID)
}

func TestRun_SettingsSnapshot(t *testing.T) {
	scenario := &Scenario{
		Name:        "settings",
		Description: "settings round trip",
		Steps: []Step{
			{Op: OpSetSetting, Args: map[string]interface{}{"key": "role", "value": "ece"}},
			{Op: OpSetSetting, Args: map[string]interface{}{"key": "role", "value": map[string]interface{}{"name": "teacher"}}},
		},
		Snapshot: SnapshotSpec{Settings: []string{"role", "absent"}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, []SettingRow{
		{Key: "role", Found: true, Value: map[string]interface{}{"name": "teacher"}},
		{Key: "absent", Found: false, Value: nil},
	}, result.Snapshot.Settings)
}

func TestRun_SeededPeriods(t *testing.T) {
	scenario := &Scenario{
		Name:        "periods",
		Description: "periods are seeded before the steps",
		Periods: []PeriodSeed{
			{ID: "june", Name: "June", LockedAt: "2026-06-20 16:00:00"},
			{ID: "initial", Active: true},
		},
		Steps: []Step{studentStep("S1", "Ada", "Byron")},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	periods := result.Snapshot.Periods
	require.Len(t, periods, 2)
	assert.Equal(t, "initial", periods[0].ID)
	assert.True(t, periods[0].Active())
	assert.Nil(t, periods[0].Name)
	assert.Equal(t, "june", periods[1].ID)
	assert.Equal(t, "2026-06-20 16:00:00", *periods[1].LockedAt)
}

func TestRun_EvidenceIsDeterministic(t *testing.T) {
	scenario := &Scenario{
		Name:        "evidence",
		Description: "evidence IDs and timestamps come from the harness",
		Steps: []Step{
			{Op: OpAddEvidence, Args: map[string]interface{}{"studentId": "S1", "text": "one"}},
			{Op: OpAddEvidence, Args: map[string]interface{}{"studentId": "S1", "text": "two", "tags": []interface{}{"lang"}}},
		},
		Snapshot: SnapshotSpec{Evidence: []string{"S1"}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	ev := result.Snapshot.Evidence
	require.Len(t, ev, 2)
	assert.Equal(t, "ev-2", ev[0].ID)
	assert.Equal(t, "2025-09-02 08:30:01", ev[0].CreatedAt)
	assert.Equal(t, []string{"lang"}, ev[0].Tags)
	assert.Equal(t, "ev-1", ev[1].ID)
	assert.Equal(t, "2025-09-02 08:30:00", ev[1].CreatedAt)
}
