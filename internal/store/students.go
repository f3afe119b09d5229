package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roach88/vgreport/internal/report"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ListStudents returns all students ordered by last name, then first name.
//
// Absent pronoun columns are defaulted to they/them/their here, at read
// time, so rows written before those columns were filled read the same
// as new ones. Returns an empty slice (not nil) when there are no students.
func (s *Store) ListStudents(ctx context.Context) ([]report.Student, error) {
	var students []report.Student
	err := s.session(ctx, func(db *sql.DB) error {
		var err error
		students, err = queryStudents(ctx, db)
		return err
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

// queryStudents reads the whole roster in list order.
func queryStudents(ctx context.Context, q queryer) ([]report.Student, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, first_name, last_name, preferred_name,
		       pronouns_subject, pronouns_object, pronouns_possessive, needs_json
		FROM students
		ORDER BY last_name, first_name
	`)
	if err != nil {
		return nil, newError(KindQuery, "query students", err)
	}
	defer rows.Close()

	students := []report.Student{}
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(KindQuery, "iterate students", err)
	}
	return students, nil
}

func scanStudent(row scanner) (report.Student, error) {
	var (
		st                          report.Student
		preferred                   sql.NullString
		subject, object, possessive sql.NullString
		needsJSON                   string
	)
	if err := row.Scan(
		&st.ID, &st.FirstName, &st.LastName, &preferred,
		&subject, &object, &possessive, &needsJSON,
	); err != nil {
		return report.Student{}, newError(KindQuery, "read student row", err)
	}

	st.PreferredName = nullableString(preferred)
	st.Pronouns = report.PronounsOrDefault(
		nullableString(subject),
		nullableString(object),
		nullableString(possessive),
	)
	st.Needs = unmarshalStringList(needsJSON)
	return st, nil
}

// UpsertStudent inserts a student or overwrites every field of the existing
// row with the same id. created_at is only set on first insert; updated_at
// is refreshed on every write.
//
// The id is stored NFC-normalized, the same form drafts keep in
// student_id, so ids read from either table compare equal.
//
// Empty pronoun fields are stored as NULL so they read back as defaults.
func (s *Store) UpsertStudent(ctx context.Context, st report.Student) error {
	st.ID = report.NormalizeKeyComponent(st.ID)
	if st.ID == "" {
		return newError(KindData, "upsert student", errors.New("student id is empty"))
	}

	needsJSON := marshalStringList(st.Needs)
	now := s.now()

	return s.session(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO students (
			  id, first_name, last_name, preferred_name,
			  pronouns_subject, pronouns_object, pronouns_possessive,
			  needs_json, created_at, updated_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
			  first_name=excluded.first_name,
			  last_name=excluded.last_name,
			  preferred_name=excluded.preferred_name,
			  pronouns_subject=excluded.pronouns_subject,
			  pronouns_object=excluded.pronouns_object,
			  pronouns_possessive=excluded.pronouns_possessive,
			  needs_json=excluded.needs_json,
			  updated_at=excluded.updated_at
		`,
			st.ID,
			st.FirstName,
			st.LastName,
			st.PreferredName,
			nullIfEmpty(st.Pronouns.Subject),
			nullIfEmpty(st.Pronouns.Object),
			nullIfEmpty(st.Pronouns.Possessive),
			needsJSON,
			now,
			now,
		)
		if err != nil {
			return newError(KindQuery, "upsert student", err)
		}
		return nil
	})
}

// DeleteStudent removes a student and every draft that references it.
//
// There is no foreign key cascade, so drafts are deleted first and the
// student second. Both statements share one transaction: if either fails
// nothing is deleted.
//
// Evidence snippets are left in place.
// Deleting an unknown id is not an error.
func (s *Store) DeleteStudent(ctx context.Context, studentID string) error {
	studentID = report.NormalizeKeyComponent(studentID)
	return s.session(ctx, func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return newError(KindQuery, "delete student: begin tx", err)
		}
		defer tx.Rollback() // No-op if committed

		res, err := tx.ExecContext(ctx, `DELETE FROM drafts WHERE student_id = ?`, studentID)
		if err != nil {
			return newError(KindQuery, "delete drafts", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, studentID); err != nil {
			return newError(KindQuery, "delete student", err)
		}
		if err := tx.Commit(); err != nil {
			return newError(KindQuery, "delete student: commit", err)
		}

		if n, err := res.RowsAffected(); err == nil {
			s.logger.Debug("student deleted", "student_id", studentID, "drafts_deleted", n)
		}
		return nil
	})
}

// nullableString converts a scanned NullString to an optional string.
func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// nullIfEmpty stores empty strings as NULL.
func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
