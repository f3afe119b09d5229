package report

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// KeyDelimiter joins natural key components into a draft's storage ID.
const KeyDelimiter = ":"

// Author and status values.
const (
	AuthorTeacher = "teacher"
	AuthorECE     = "ece"

	StatusApproved = "approved"

	DefaultAuthor = AuthorTeacher
	DefaultStatus = StatusApproved
)

// ErrInvalidDraftKey is returned when a natural key component is empty or
// contains KeyDelimiter.
var ErrInvalidDraftKey = errors.New("invalid draft key")

// DraftKey is the natural key of a Draft: one section of one frame for one
// student in one report period.
type DraftKey struct {
	StudentID      string
	ReportPeriodID string
	Frame          string
	Section        string
}

// NormalizeKeyComponent returns s in Unicode NFC form. Lookups by a single
// key component (e.g. listing drafts of a period) must use it too, and
// student ids are stored in this form in every table.
func NormalizeKeyComponent(s string) string {
	return norm.NFC.String(s)
}

// Normalize returns the key with every component in Unicode NFC form.
// Canonically equivalent keys normalize to identical keys.
func (k DraftKey) Normalize() DraftKey {
	return DraftKey{
		StudentID:      NormalizeKeyComponent(k.StudentID),
		ReportPeriodID: NormalizeKeyComponent(k.ReportPeriodID),
		Frame:          NormalizeKeyComponent(k.Frame),
		Section:        NormalizeKeyComponent(k.Section),
	}
}

// Validate checks that every component is non-empty and free of the
// delimiter, so that ID is injective over valid keys.
func (k DraftKey) Validate() error {
	parts := []struct {
		name, value string
	}{
		{"studentId", k.StudentID},
		{"reportPeriodId", k.ReportPeriodID},
		{"frame", k.Frame},
		{"section", k.Section},
	}
	for _, p := range parts {
		if p.value == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidDraftKey, p.name)
		}
		if strings.Contains(p.value, KeyDelimiter) {
			return fmt.Errorf("%w: %s %q contains %q", ErrInvalidDraftKey, p.name, p.value, KeyDelimiter)
		}
	}
	return nil
}

// ID derives the storage row ID from the key. It is a pure function of the
// four components and must be recomputed on every write.
func (k DraftKey) ID() string {
	return strings.Join([]string{k.StudentID, k.ReportPeriodID, k.Frame, k.Section}, KeyDelimiter)
}

// String implements fmt.Stringer.
func (k DraftKey) String() string {
	return k.ID()
}

// Draft is the stored content of one report section.
type Draft struct {
	StudentID      string         `json:"studentId"`
	ReportPeriodID string         `json:"reportPeriodId"`
	Frame          string         `json:"frame"`
	Section        string         `json:"section"`
	TemplateID     *string        `json:"templateId,omitempty"`
	SlotValues     map[string]any `json:"slotValues"`
	RenderedText   *string        `json:"renderedText,omitempty"`
	Author         *string        `json:"author,omitempty"`
	Status         *string        `json:"status,omitempty"`
}

// Key returns the draft's natural key.
func (d Draft) Key() DraftKey {
	return DraftKey{
		StudentID:      d.StudentID,
		ReportPeriodID: d.ReportPeriodID,
		Frame:          d.Frame,
		Section:        d.Section,
	}
}

// StoredDraft is a draft together with its derived storage ID.
type StoredDraft struct {
	ID string `json:"id"`
	Draft
}

// Stored attaches the ID derived from the draft's normalized key.
func (d Draft) Stored() StoredDraft {
	return StoredDraft{ID: d.Key().Normalize().ID(), Draft: d}
}

// AuthorOrDefault returns the author, or DefaultAuthor when absent.
func (d Draft) AuthorOrDefault() string {
	if d.Author == nil || *d.Author == "" {
		return DefaultAuthor
	}
	return *d.Author
}

// StatusOrDefault returns the status, or DefaultStatus when absent.
func (d Draft) StatusOrDefault() string {
	if d.Status == nil || *d.Status == "" {
		return DefaultStatus
	}
	return *d.Status
}
