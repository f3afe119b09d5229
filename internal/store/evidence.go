package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roach88/vgreport/internal/report"
)

// ListEvidence returns a student's evidence snippets, newest first.
// Malformed tags read as an empty list. Student ids are matched in NFC form.
func (s *Store) ListEvidence(ctx context.Context, studentID string) ([]report.EvidenceSnippet, error) {
	snippets := []report.EvidenceSnippet{}
	err := s.session(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, student_id, text, tags_json, created_at
			FROM evidence_snippets
			WHERE student_id = ?
			ORDER BY created_at DESC, id DESC
		`, report.NormalizeKeyComponent(studentID))
		if err != nil {
			return newError(KindQuery, "query evidence", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				e         report.EvidenceSnippet
				tagsJSON  string
				createdAt sql.NullString
			)
			if err := rows.Scan(&e.ID, &e.StudentID, &e.Text, &tagsJSON, &createdAt); err != nil {
				return newError(KindQuery, "read evidence row", err)
			}
			e.Tags = unmarshalStringList(tagsJSON)
			e.CreatedAt = createdAt.String
			snippets = append(snippets, e)
		}
		if err := rows.Err(); err != nil {
			return newError(KindQuery, "iterate evidence", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snippets, nil
}

// AddEvidence records a new snippet for a student and returns it with its
// generated ID and creation time.
func (s *Store) AddEvidence(ctx context.Context, studentID, text string, tags []string) (report.EvidenceSnippet, error) {
	studentID = report.NormalizeKeyComponent(studentID)
	if studentID == "" {
		return report.EvidenceSnippet{}, newError(KindData, "add evidence", errors.New("student id is empty"))
	}
	if text == "" {
		return report.EvidenceSnippet{}, newError(KindData, "add evidence", errors.New("evidence text is empty"))
	}
	if tags == nil {
		tags = []string{}
	}

	snippet := report.EvidenceSnippet{
		ID:        s.ids.Generate(),
		StudentID: studentID,
		Text:      text,
		Tags:      tags,
		CreatedAt: s.now(),
	}

	err := s.session(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO evidence_snippets (id, student_id, text, tags_json, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, snippet.ID, snippet.StudentID, snippet.Text, marshalStringList(snippet.Tags), snippet.CreatedAt)
		if err != nil {
			return newError(KindQuery, "add evidence", err)
		}
		return nil
	})
	if err != nil {
		return report.EvidenceSnippet{}, err
	}
	return snippet, nil
}

// DeleteEvidence removes one snippet. Deleting an unknown id is not an error.
func (s *Store) DeleteEvidence(ctx context.Context, id string) error {
	return s.session(ctx, func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, `DELETE FROM evidence_snippets WHERE id = ?`, id); err != nil {
			return newError(KindQuery, "delete evidence", err)
		}
		return nil
	})
}
