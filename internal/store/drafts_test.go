package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vgreport/internal/report"
)

func testDraft(studentID, period, frame, section string, slots map[string]any) report.Draft {
	return report.Draft{
		StudentID:      studentID,
		ReportPeriodID: period,
		Frame:          frame,
		Section:        section,
		SlotValues:     slots,
	}
}

func draftsByID(t *testing.T, s *Store) map[string]string {
	t.Helper()
	db := openRaw(t, s.Path())
	rows, err := db.Query(`SELECT id, updated_at FROM drafts`)
	require.NoError(t, err)
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var id, updated string
		require.NoError(t, rows.Scan(&id, &updated))
		out[id] = updated
	}
	require.NoError(t, rows.Err())
	return out
}

func TestUpsertDraft_InsertAndList(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	d := testDraft("s1", "initial", "belonging_and_contributing", "key_learning",
		map[string]any{"evidence": "builds with blocks", "change": "shares more"})
	d.TemplateID = ptr("tpl-1")
	d.RenderedText = ptr("Ava builds with blocks.")

	require.NoError(t, s.UpsertDraft(ctx, d))

	drafts, err := s.ListDrafts(ctx, "initial")
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	got := drafts[0]
	assert.Equal(t, d.Key(), got.Key())
	assert.Equal(t, "tpl-1", *got.TemplateID)
	assert.Equal(t, "Ava builds with blocks.", *got.RenderedText)
	assert.Equal(t, d.SlotValues, got.SlotValues)
}

func TestUpsertDraft_StoredIDIsDerivedFromKey(t *testing.T) {
	s := createTestStore(t)

	d := testDraft("s1", "initial", "belonging", "key_learning", nil)
	require.NoError(t, s.UpsertDraft(context.Background(), d))

	ids := draftsByID(t, s)
	require.Len(t, ids, 1)
	assert.Contains(t, ids, "s1:initial:belonging:key_learning")
}

func TestUpsertDraft_DefaultsAuthorAndStatus(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertDraft(ctx, testDraft("s1", "initial", "f", "sec", nil)))

	drafts, err := s.ListDrafts(ctx, "initial")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	require.NotNil(t, drafts[0].Author)
	require.NotNil(t, drafts[0].Status)
	assert.Equal(t, "teacher", *drafts[0].Author)
	assert.Equal(t, "approved", *drafts[0].Status)
	assert.Equal(t, map[string]any{}, drafts[0].SlotValues)
}

func TestUpsertDraft_ExplicitAuthorAndStatus(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	d := testDraft("s1", "initial", "f", "sec", nil)
	d.Author = ptr("ece")
	d.Status = ptr("draft")
	require.NoError(t, s.UpsertDraft(ctx, d))

	drafts, err := s.ListDrafts(ctx, "initial")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "ece", *drafts[0].Author)
	assert.Equal(t, "draft", *drafts[0].Status)
}

func TestUpsertDraft_SameKeyCollidesOntoOneRow(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := testDraft("s1", "initial", "f", "sec", map[string]any{"x": "first"})
	a.TemplateID = ptr("tpl-a")
	a.RenderedText = ptr("first text")
	a.Status = ptr("draft")

	b := testDraft("s1", "initial", "f", "sec", map[string]any{"y": "second"})

	require.NoError(t, s.UpsertDraft(ctx, a))
	before := draftsByID(t, s)
	require.NoError(t, s.UpsertDraft(ctx, b))
	after := draftsByID(t, s)

	drafts, err := s.ListDrafts(ctx, "initial")
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	got := drafts[0]
	assert.Equal(t, map[string]any{"y": "second"}, got.SlotValues)
	assert.Nil(t, got.TemplateID, "template id overwritten with incoming absence")
	assert.Nil(t, got.RenderedText)
	assert.Equal(t, "approved", *got.Status, "absent status on rewrite falls back to default")

	id := b.Key().ID()
	require.Contains(t, after, id)
	assert.NotEqual(t, before[id], after[id], "updated_at must be refreshed")
}

func TestUpsertDraft_DistinctKeysAreDistinctRows(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	keys := []report.Draft{
		testDraft("s1", "initial", "f1", "key_learning", nil),
		testDraft("s1", "initial", "f1", "growth_in_learning", nil),
		testDraft("s1", "initial", "f2", "key_learning", nil),
		testDraft("s2", "initial", "f1", "key_learning", nil),
		testDraft("s1", "june", "f1", "key_learning", nil),
	}
	for _, d := range keys {
		require.NoError(t, s.UpsertDraft(ctx, d))
	}

	initial, err := s.ListDrafts(ctx, "initial")
	require.NoError(t, err)
	assert.Len(t, initial, 4)

	june, err := s.ListDrafts(ctx, "june")
	require.NoError(t, err)
	assert.Len(t, june, 1)

	assert.Len(t, draftsByID(t, s), 5)
}

func TestUpsertDraft_CanonicallyEqualKeysCollide(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertDraft(ctx, testDraft("\u00e9lise", "initial", "f", "sec", map[string]any{"v": "1"})))
	require.NoError(t, s.UpsertDraft(ctx, testDraft("e\u0301lise", "initial", "f", "sec", map[string]any{"v": "2"})))

	drafts, err := s.ListDrafts(ctx, "initial")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, map[string]any{"v": "2"}, drafts[0].SlotValues)
}

func TestUpsertDraft_InvalidKey(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		draft report.Draft
	}{
		{"empty student", testDraft("", "initial", "f", "sec", nil)},
		{"empty section", testDraft("s1", "initial", "f", "", nil)},
		{"delimiter in frame", testDraft("s1", "initial", "f:x", "sec", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.UpsertDraft(ctx, tt.draft)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindData))
			assert.True(t, errors.Is(err, report.ErrInvalidDraftKey))
		})
	}

	assert.Empty(t, draftsByID(t, s))
}

func TestUpsertDraft_UnserializableSlotValuesStoredAsEmpty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	d := testDraft("s1", "initial", "f", "sec", map[string]any{"bad": make(chan int)})
	require.NoError(t, s.UpsertDraft(ctx, d))

	drafts, err := s.ListDrafts(ctx, "initial")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, map[string]any{}, drafts[0].SlotValues)
}

func TestUpsertDraft_HTMLNotEscaped(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertDraft(ctx, testDraft("s1", "initial", "f", "sec", map[string]any{"note": "a < b & c"})))

	var stored string
	db := openRaw(t, s.Path())
	require.NoError(t, db.QueryRow(`SELECT slot_values_json FROM drafts`).Scan(&stored))
	assert.Equal(t, `{"note":"a < b & c"}`, stored)
}

func TestListDrafts_MalformedSlotValuesTolerated(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertDraft(ctx, testDraft("s1", "initial", "f", "sec", map[string]any{"ok": "yes"})))
	require.NoError(t, s.UpsertDraft(ctx, testDraft("s2", "initial", "f", "sec", map[string]any{"ok": "yes"})))

	db := openRaw(t, s.Path())
	_, err := db.Exec(`UPDATE drafts SET slot_values_json = '{not json' WHERE student_id = 's1'`)
	require.NoError(t, err)

	drafts, err := s.ListDrafts(ctx, "initial")
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	byStudent := map[string]report.Draft{}
	for _, d := range drafts {
		byStudent[d.StudentID] = d
	}
	assert.Equal(t, map[string]any{}, byStudent["s1"].SlotValues)
	assert.Equal(t, map[string]any{"ok": "yes"}, byStudent["s2"].SlotValues)
}

func TestListDrafts_EmptyPeriod(t *testing.T) {
	s := createTestStore(t)

	drafts, err := s.ListDrafts(context.Background(), "june")
	require.NoError(t, err)
	assert.NotNil(t, drafts)
	assert.Empty(t, drafts)
}
