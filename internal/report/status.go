package report

import (
	"strings"
)

// Frames lists the frame ids of a kindergarten report in display order.
var Frames = []string{
	"belonging_and_contributing",
	"self_regulation_and_well_being",
	"demonstrating_literacy_and_mathematics_behaviors",
	"problem_solving_and_innovating",
}

// Sections lists the section ids written under every frame.
var Sections = []string{
	"key_learning",
	"growth_in_learning",
	"next_steps_in_learning",
}

// BoxesPerStudent is the number of frame/section boxes on one report.
func BoxesPerStudent() int {
	return len(Frames) * len(Sections)
}

// ExportReady reports whether the draft has rendered text and is approved.
func (d Draft) ExportReady() bool {
	if d.RenderedText == nil || strings.TrimSpace(*d.RenderedText) == "" {
		return false
	}
	return d.StatusOrDefault() == StatusApproved
}

// NeedsReview reports whether an ECE wrote the draft and the teacher has
// not approved it yet. Absent author and status resolve the way the store
// writes them.
func (d Draft) NeedsReview() bool {
	return d.AuthorOrDefault() == AuthorECE && d.StatusOrDefault() != StatusApproved
}

// Readiness summarizes one student's report for a period.
type Readiness struct {
	StudentID   string `json:"studentId"`
	Name        string `json:"name"`
	Ready       int    `json:"ready"`
	Total       int    `json:"total"`
	NeedsReview bool   `json:"needsReview"`
}

// StudentReadiness counts the export-ready boxes of st among drafts.
// Drafts of other students are ignored, as are frames and sections outside
// Frames and Sections. NeedsReview considers every draft of the student.
func StudentReadiness(st Student, drafts []Draft) Readiness {
	r := Readiness{
		StudentID: st.ID,
		Name:      st.DisplayName() + " " + st.LastName,
		Total:     BoxesPerStudent(),
	}

	studentID := NormalizeKeyComponent(st.ID)
	boxes := make(map[[2]string]Draft)
	for _, d := range drafts {
		if NormalizeKeyComponent(d.StudentID) != studentID {
			continue
		}
		if d.NeedsReview() {
			r.NeedsReview = true
		}
		boxes[[2]string{d.Frame, d.Section}] = d
	}

	for _, frame := range Frames {
		for _, section := range Sections {
			if d, ok := boxes[[2]string{frame, section}]; ok && d.ExportReady() {
				r.Ready++
			}
		}
	}
	return r
}
