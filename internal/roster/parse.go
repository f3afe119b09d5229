package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/vgreport/internal/report"
)

// Column names.
const (
	ColLocalID            = "student_local_id"
	ColFirstName          = "first_name"
	ColLastName           = "last_name"
	ColPreferredName      = "preferred_name"
	ColPronounsSubject    = "pronouns_subject"
	ColPronounsObject     = "pronouns_object"
	ColPronounsPossessive = "pronouns_possessive"
	ColNeeds              = "needs"
)

// RequiredColumns must appear in the header row.
var RequiredColumns = []string{ColFirstName, ColLastName}

// ErrMissingColumns is returned when the header lacks a required column.
var ErrMissingColumns = errors.New("missing required columns")

// utf8BOM is stripped from the start of the file.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one validated CSV row.
type Row struct {
	Line          int // 1-based line in the file, header is line 1
	LocalID       string
	FirstName     string
	LastName      string
	PreferredName string
	Pronouns      *report.Pronouns // nil when no pronoun column was filled
	Needs         []string         // nil when the needs cell was empty
}

// ParseResult holds the rows that validated and one message per row that
// did not.
type ParseResult struct {
	Rows   []Row
	Errors []string
}

// Parse reads a roster CSV. A returned error means the file as a whole is
// unusable (unreadable, malformed, or missing required columns); row level
// problems are collected in ParseResult.Errors instead.
func Parse(r io.Reader) (ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ParseResult{}, fmt.Errorf("failed to read roster: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // short rows are tolerated
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return ParseResult{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(RequiredColumns, ", "))
	}
	if err != nil {
		return ParseResult{}, fmt.Errorf("failed to parse roster header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return ParseResult{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	result := ParseResult{Rows: []Row{}, Errors: []string{}}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ParseResult{}, fmt.Errorf("failed to parse roster: %w", err)
		}
		line, _ := reader.FieldPos(0)

		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		row := Row{
			Line:          line,
			LocalID:       cell(ColLocalID),
			FirstName:     cell(ColFirstName),
			LastName:      cell(ColLastName),
			PreferredName: cell(ColPreferredName),
			Needs:         splitNeeds(cell(ColNeeds)),
		}

		var rowErrs []string
		if row.FirstName == "" {
			rowErrs = append(rowErrs, fmt.Sprintf("Row %d: missing %s", line, ColFirstName))
		}
		if row.LastName == "" {
			rowErrs = append(rowErrs, fmt.Sprintf("Row %d: missing %s", line, ColLastName))
		}
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			continue
		}

		subject := strings.ToLower(cell(ColPronounsSubject))
		object := strings.ToLower(cell(ColPronounsObject))
		possessive := strings.ToLower(cell(ColPronounsPossessive))
		if subject != "" || object != "" || possessive != "" {
			p := report.DefaultPronouns()
			if subject != "" {
				p.Subject = subject
			}
			if object != "" {
				p.Object = object
			}
			if possessive != "" {
				p.Possessive = possessive
			}
			row.Pronouns = &p
		}

		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// splitNeeds splits "IEP; ELL" into its non-empty entries.
func splitNeeds(cell string) []string {
	if cell == "" {
		return nil
	}
	var needs []string
	for _, n := range strings.Split(cell, ";") {
		if n = strings.TrimSpace(n); n != "" {
			needs = append(needs, n)
		}
	}
	return needs
}
