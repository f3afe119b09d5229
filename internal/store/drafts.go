package store

import (
	"context"
	"database/sql"

	"github.com/roach88/vgreport/internal/report"
)

// ListDrafts returns every draft in the given report period.
//
// Order is unspecified. A row whose slot_values_json cannot be parsed is
// still returned, with an empty SlotValues document.
// Returns an empty slice (not nil) if the period has no drafts.
func (s *Store) ListDrafts(ctx context.Context, reportPeriodID string) ([]report.Draft, error) {
	var drafts []report.Draft
	err := s.session(ctx, func(db *sql.DB) error {
		var err error
		drafts, err = queryDrafts(ctx, db, `WHERE report_period_id = ?`,
			report.NormalizeKeyComponent(reportPeriodID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

// queryDrafts selects drafts with the given WHERE/ORDER BY tail.
// Never returns a nil slice on success.
func queryDrafts(ctx context.Context, q queryer, tail string, args ...any) ([]report.Draft, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT student_id, report_period_id, frame, section, template_id,
		       slot_values_json, rendered_text, author, status
		FROM drafts
		`+tail, args...)
	if err != nil {
		return nil, newError(KindQuery, "query drafts", err)
	}
	defer rows.Close()

	drafts := []report.Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(KindQuery, "iterate drafts", err)
	}
	return drafts, nil
}

func scanDraft(row scanner) (report.Draft, error) {
	var (
		d              report.Draft
		templateID     sql.NullString
		slotValuesJSON string
		renderedText   sql.NullString
		author, status string
	)
	if err := row.Scan(
		&d.StudentID, &d.ReportPeriodID, &d.Frame, &d.Section, &templateID,
		&slotValuesJSON, &renderedText, &author, &status,
	); err != nil {
		return report.Draft{}, newError(KindQuery, "read draft row", err)
	}

	d.TemplateID = nullableString(templateID)
	d.SlotValues = unmarshalSlotValues(slotValuesJSON)
	d.RenderedText = nullableString(renderedText)
	d.Author = &author
	d.Status = &status
	return d, nil
}

// UpsertDraft writes a draft, merging by natural key.
//
// The row ID is derived from the (normalized) natural key on every call and
// is never taken from the caller. On conflict with an existing natural key
// every mutable field is overwritten and updated_at is refreshed; the key
// columns and ID stay as they are, which is the same value this call would
// have written.
//
// Absent author and status default to "teacher" and "approved".
func (s *Store) UpsertDraft(ctx context.Context, d report.Draft) error {
	key := d.Key().Normalize()
	if err := key.Validate(); err != nil {
		return newError(KindData, "upsert draft", err)
	}

	id := key.ID()
	slotValuesJSON := marshalSlotValues(d.SlotValues)
	author := d.AuthorOrDefault()
	status := d.StatusOrDefault()
	now := s.now()

	return s.session(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO drafts (
			  id, student_id, report_period_id, frame, section, template_id,
			  slot_values_json, rendered_text, author, status, updated_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(student_id, report_period_id, frame, section) DO UPDATE SET
			  template_id=excluded.template_id,
			  slot_values_json=excluded.slot_values_json,
			  rendered_text=excluded.rendered_text,
			  author=excluded.author,
			  status=excluded.status,
			  updated_at=excluded.updated_at
		`,
			id,
			key.StudentID,
			key.ReportPeriodID,
			key.Frame,
			key.Section,
			d.TemplateID,
			slotValuesJSON,
			d.RenderedText,
			author,
			status,
			now,
		)
		if err != nil {
			return newError(KindQuery, "upsert draft", err)
		}
		return nil
	})
}
