package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vgreport/internal/report"
)

func reviewDraft(studentID, period, frame, section, text, author, status string) report.Draft {
	d := testDraft(studentID, period, frame, section, nil)
	if text != "" {
		d.RenderedText = ptr(text)
	}
	if author != "" {
		d.Author = ptr(author)
	}
	if status != "" {
		d.Status = ptr(status)
	}
	return d
}

func TestListDraftsNeedingReview(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, d := range []report.Draft{
		reviewDraft("S2", "initial", "belonging_and_contributing", "key_learning", "Ece text", "ece", "draft"),
		reviewDraft("S1", "initial", "problem_solving_and_innovating", "key_learning", "Ece text", "ece", "draft"),
		reviewDraft("S1", "initial", "belonging_and_contributing", "growth_in_learning", "Ece text", "ece", "draft"),
		reviewDraft("S1", "initial", "belonging_and_contributing", "key_learning", "Approved", "ece", "approved"),
		reviewDraft("S1", "initial", "belonging_and_contributing", "next_steps_in_learning", "Mine", "", ""),
		reviewDraft("S1", "june", "belonging_and_contributing", "key_learning", "Other period", "ece", "draft"),
	} {
		require.NoError(t, s.UpsertDraft(ctx, d))
	}

	drafts, err := s.ListDraftsNeedingReview(ctx, "initial")
	require.NoError(t, err)

	var ids []string
	for _, d := range drafts {
		ids = append(ids, d.Stored().ID)
		assert.True(t, d.NeedsReview())
	}
	assert.Equal(t, []string{
		"S1:initial:belonging_and_contributing:growth_in_learning",
		"S1:initial:problem_solving_and_innovating:key_learning",
		"S2:initial:belonging_and_contributing:key_learning",
	}, ids)
}

func TestListDraftsNeedingReview_Empty(t *testing.T) {
	s := createTestStore(t)

	drafts, err := s.ListDraftsNeedingReview(context.Background(), "initial")
	require.NoError(t, err)
	assert.NotNil(t, drafts)
	assert.Empty(t, drafts)
}

func TestPeriodReadiness(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertStudent(ctx, testStudent("S1", "Ada", "Byron")))
	require.NoError(t, s.UpsertStudent(ctx, testStudent("S2", "Alan", "Turing")))

	for _, d := range []report.Draft{
		reviewDraft("S1", "initial", "belonging_and_contributing", "key_learning", "Ready", "", ""),
		reviewDraft("S1", "initial", "belonging_and_contributing", "growth_in_learning", "Ready", "teacher", "approved"),
		reviewDraft("S1", "initial", "self_regulation_and_well_being", "key_learning", "", "", ""),
		reviewDraft("S2", "initial", "belonging_and_contributing", "key_learning", "Ece", "ece", "draft"),
		reviewDraft("S2", "june", "belonging_and_contributing", "key_learning", "June", "", ""),
	} {
		require.NoError(t, s.UpsertDraft(ctx, d))
	}

	summaries, err := s.PeriodReadiness(ctx, "initial")
	require.NoError(t, err)
	assert.Equal(t, []report.Readiness{
		{StudentID: "S1", Name: "Ada Byron", Ready: 2, Total: 12},
		{StudentID: "S2", Name: "Alan Turing", Ready: 0, Total: 12, NeedsReview: true},
	}, summaries)
}

func TestPeriodReadiness_NoStudents(t *testing.T) {
	s := createTestStore(t)

	summaries, err := s.PeriodReadiness(context.Background(), "initial")
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}
