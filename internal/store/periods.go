package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roach88/vgreport/internal/report"
)

// ListReportPeriods returns all report periods ordered by id.
// The store never writes this table.
func (s *Store) ListReportPeriods(ctx context.Context) ([]report.ReportPeriod, error) {
	periods := []report.ReportPeriod{}
	err := s.session(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, name, board_id, is_active, locked_at
			FROM report_periods
			ORDER BY id
		`)
		if err != nil {
			return newError(KindQuery, "query report periods", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanReportPeriod(rows)
			if err != nil {
				return err
			}
			periods = append(periods, p)
		}
		if err := rows.Err(); err != nil {
			return newError(KindQuery, "iterate report periods", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return periods, nil
}

// GetReportPeriod returns one report period; found is false if it does not exist.
func (s *Store) GetReportPeriod(ctx context.Context, id string) (period report.ReportPeriod, found bool, err error) {
	err = s.session(ctx, func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `
			SELECT id, name, board_id, is_active, locked_at
			FROM report_periods
			WHERE id = ?
		`, id)
		p, scanErr := scanReportPeriod(row)
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil
		}
		if scanErr != nil {
			return scanErr
		}
		period, found = p, true
		return nil
	})
	if err != nil {
		return report.ReportPeriod{}, false, err
	}
	return period, found, nil
}

func scanReportPeriod(row scanner) (report.ReportPeriod, error) {
	var (
		p        report.ReportPeriod
		name     sql.NullString
		boardID  sql.NullString
		isActive sql.NullBool
		lockedAt sql.NullString
	)
	if err := row.Scan(&p.ID, &name, &boardID, &isActive, &lockedAt); err != nil {
		return report.ReportPeriod{}, newError(KindQuery, "read report period row", err)
	}

	p.Name = nullableString(name)
	p.BoardID = nullableString(boardID)
	if isActive.Valid {
		v := isActive.Bool
		p.IsActive = &v
	}
	p.LockedAt = nullableString(lockedAt)
	return p, nil
}
