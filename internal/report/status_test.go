package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func box(studentID, frame, section, text, author, status string) Draft {
	d := Draft{StudentID: studentID, ReportPeriodID: "february", Frame: frame, Section: section}
	if text != "" {
		d.RenderedText = &text
	}
	if author != "" {
		d.Author = &author
	}
	if status != "" {
		d.Status = &status
	}
	return d
}

func TestDraftExportReady(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		want  bool
	}{
		{"empty", box("s1", "f", "s", "", "", ""), false},
		{"whitespace_only", box("s1", "f", "s", "  \n", "", ""), false},
		{"teacher_default_approved", box("s1", "f", "s", "Hello", "", ""), true},
		{"ece_draft", box("s1", "f", "s", "Hello", "ece", "draft"), false},
		{"ece_approved", box("s1", "f", "s", "Hello", "ece", "approved"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.draft.ExportReady())
		})
	}
}

func TestDraftNeedsReview(t *testing.T) {
	assert.True(t, box("s1", "f", "s", "Text", "ece", "draft").NeedsReview())
	assert.False(t, box("s1", "f", "s", "Text", "ece", "approved").NeedsReview())
	assert.False(t, box("s1", "f", "s", "Text", "teacher", "draft").NeedsReview())
	assert.False(t, box("s1", "f", "s", "", "", "").NeedsReview())
}

func TestStudentReadiness(t *testing.T) {
	ada := "Ada"
	st := Student{ID: "s1", FirstName: "Augusta", LastName: "Byron", PreferredName: &ada}

	t.Run("no_drafts", func(t *testing.T) {
		r := StudentReadiness(st, nil)
		assert.Equal(t, Readiness{StudentID: "s1", Name: "Ada Byron", Ready: 0, Total: 12}, r)
	})

	t.Run("counts_ready_boxes", func(t *testing.T) {
		drafts := []Draft{
			box("s1", "belonging_and_contributing", "key_learning", "Text", "", ""),
			box("s1", "belonging_and_contributing", "growth_in_learning", "", "", ""),
			box("s1", "problem_solving_and_innovating", "next_steps_in_learning", "More", "teacher", "approved"),
			box("s1", "problem_solving_and_innovating", "key_learning", "Ece", "ece", "draft"),
			// Outside the known frames.
			box("s1", "kindergarten", "key_learning", "Text", "", ""),
			// Another student.
			box("s2", "belonging_and_contributing", "next_steps_in_learning", "Text", "", ""),
		}

		r := StudentReadiness(st, drafts)
		assert.Equal(t, 2, r.Ready)
		assert.Equal(t, 12, r.Total)
		assert.True(t, r.NeedsReview)
	})

	t.Run("review_only_for_own_drafts", func(t *testing.T) {
		drafts := []Draft{box("s2", "belonging_and_contributing", "key_learning", "Text", "ece", "draft")}
		assert.False(t, StudentReadiness(st, drafts).NeedsReview)
	})
}
