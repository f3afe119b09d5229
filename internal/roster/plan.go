package roster

import (
	"fmt"
	"strings"

	"github.com/roach88/vgreport/internal/report"
)

// IDGenerator assigns ids to new students without a student_local_id.
type IDGenerator interface {
	Generate() string
}

// Plan is the set of student writes an import will perform.
type Plan struct {
	ToAdd    []report.Student
	ToUpdate []report.Student
	Warnings []string
	Errors   []string
}

// BuildPlan matches rows against existing students.
//
// A row with a student_local_id matches the student with that id. Any
// other row matches by first and last name, ignoring case. A matched
// student keeps every field the row leaves empty. A row that matches a
// student an earlier row already claimed is reported and skipped.
func BuildPlan(rows []Row, existing []report.Student, ids IDGenerator) Plan {
	plan := Plan{
		ToAdd:    []report.Student{},
		ToUpdate: []report.Student{},
		Warnings: []string{},
		Errors:   []string{},
	}

	byID := make(map[string]report.Student, len(existing))
	byName := make(map[string]report.Student, len(existing))
	for _, st := range existing {
		byID[report.NormalizeKeyComponent(st.ID)] = st
		byName[nameKey(st.FirstName, st.LastName)] = st
	}

	claimed := make(map[string]int) // normalized id -> line
	for _, row := range rows {
		current, found := match(row, byID, byName)

		var st report.Student
		if found {
			st = merge(current, row)
		} else {
			st = newStudent(row, ids)
		}

		key := report.NormalizeKeyComponent(st.ID)
		if line, dup := claimed[key]; dup {
			plan.Errors = append(plan.Errors, fmt.Sprintf("Row %d: duplicate of row %d", row.Line, line))
			continue
		}
		claimed[key] = row.Line

		if found {
			plan.ToUpdate = append(plan.ToUpdate, st)
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("Row %d: student %q already exists, will update",
				row.Line, row.FirstName+" "+row.LastName))
		} else {
			plan.ToAdd = append(plan.ToAdd, st)
			// Later rows naming the same student are duplicates, not adds.
			byID[key] = st
			byName[nameKey(st.FirstName, st.LastName)] = st
		}
	}
	return plan
}

func match(row Row, byID, byName map[string]report.Student) (report.Student, bool) {
	if row.LocalID != "" {
		st, ok := byID[report.NormalizeKeyComponent(row.LocalID)]
		return st, ok
	}
	st, ok := byName[nameKey(row.FirstName, row.LastName)]
	return st, ok
}

func nameKey(first, last string) string {
	return strings.ToLower(first) + "|" + strings.ToLower(last)
}

func merge(st report.Student, row Row) report.Student {
	st.FirstName = row.FirstName
	st.LastName = row.LastName
	if row.PreferredName != "" {
		preferred := row.PreferredName
		st.PreferredName = &preferred
	}
	if row.Pronouns != nil {
		st.Pronouns = *row.Pronouns
	}
	if row.Needs != nil {
		st.Needs = row.Needs
	}
	return st
}

func newStudent(row Row, ids IDGenerator) report.Student {
	st := report.Student{
		ID:        row.LocalID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Pronouns:  report.DefaultPronouns(),
		Needs:     []string{},
	}
	if st.ID == "" {
		st.ID = ids.Generate()
	}
	if row.PreferredName != "" {
		preferred := row.PreferredName
		st.PreferredName = &preferred
	}
	if row.Pronouns != nil {
		st.Pronouns = *row.Pronouns
	}
	if row.Needs != nil {
		st.Needs = row.Needs
	}
	return st
}
