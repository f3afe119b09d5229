package store

import (
	"context"
	"database/sql"

	"github.com/roach88/vgreport/internal/report"
)

// ListDraftsNeedingReview returns the drafts of a period that an ECE wrote
// and the teacher has not approved, ordered by student, frame and section.
func (s *Store) ListDraftsNeedingReview(ctx context.Context, reportPeriodID string) ([]report.Draft, error) {
	var drafts []report.Draft
	err := s.session(ctx, func(db *sql.DB) error {
		var err error
		drafts, err = queryDrafts(ctx, db, `
			WHERE report_period_id = ? AND author = ? AND status != ?
			ORDER BY student_id, frame, section`,
			report.NormalizeKeyComponent(reportPeriodID), report.AuthorECE, report.StatusApproved)
		return err
	})
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

// PeriodReadiness returns one readiness summary per student on the roster,
// in roster order. Students and drafts are read in the same session.
func (s *Store) PeriodReadiness(ctx context.Context, reportPeriodID string) ([]report.Readiness, error) {
	var summaries []report.Readiness
	err := s.session(ctx, func(db *sql.DB) error {
		students, err := queryStudents(ctx, db)
		if err != nil {
			return err
		}
		drafts, err := queryDrafts(ctx, db, `WHERE report_period_id = ?`,
			report.NormalizeKeyComponent(reportPeriodID))
		if err != nil {
			return err
		}

		byStudent := make(map[string][]report.Draft)
		for _, d := range drafts {
			byStudent[d.StudentID] = append(byStudent[d.StudentID], d)
		}

		summaries = make([]report.Readiness, 0, len(students))
		for _, st := range students {
			summaries = append(summaries, report.StudentReadiness(st, byStudent[report.NormalizeKeyComponent(st.ID)]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
