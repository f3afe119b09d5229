package harness

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/vgreport/internal/report"
)

// Snapshot is the store state after a scenario, in a stable order.
type Snapshot struct {
	Scenario string                   `json:"scenario"`
	Trace    []TraceEvent             `json:"trace"`
	Students []report.Student         `json:"students"`
	Periods  []report.ReportPeriod    `json:"periods"`
	Drafts   []report.StoredDraft      `json:"drafts"`
	Settings []SettingRow             `json:"settings"`
	Evidence []report.EvidenceSnippet `json:"evidence"`
}

// SettingRow is the result of reading one setting key.
type SettingRow struct {
	Key   string      `json:"key"`
	Found bool        `json:"found"`
	Value interface{} `json:"value"`
}

// Render returns the snapshot as indented JSON with a trailing newline.
// The output is the golden file format.
func (s *Snapshot) Render() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("render snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Rows returns the rows of one snapshot table as generic JSON objects,
// the shape assertions match against.
func (s *Snapshot) Rows(table string) ([]map[string]interface{}, error) {
	var v interface{}
	switch table {
	case TableStudents:
		v = s.Students
	case TablePeriods:
		v = s.Periods
	case TableDrafts:
		v = s.Drafts
	case TableSettings:
		v = s.Settings
	case TableEvidence:
		v = s.Evidence
	default:
		return nil, fmt.Errorf("unknown snapshot table %q", table)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", table, err)
	}
	rows := []map[string]interface{}{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", table, err)
	}
	return rows, nil
}
