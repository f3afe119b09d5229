package report

// Default pronouns applied to any pronoun field that is absent in storage.
const (
	DefaultPronounSubject    = "they"
	DefaultPronounObject     = "them"
	DefaultPronounPossessive = "their"
)

// Student is one student on the teacher's roster.
type Student struct {
	ID            string   `json:"id"`
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	PreferredName *string  `json:"preferredName,omitempty"`
	Pronouns      Pronouns `json:"pronouns"`
	Needs         []string `json:"needs"` // e.g. "ELL", "IEP"
}

// DisplayName returns the preferred name when set, otherwise the first name.
func (s Student) DisplayName() string {
	if s.PreferredName != nil && *s.PreferredName != "" {
		return *s.PreferredName
	}
	return s.FirstName
}

// Pronouns holds the three pronoun forms used when rendering comments.
type Pronouns struct {
	Subject    string `json:"subject"`    // he/she/they
	Object     string `json:"object"`     // him/her/them
	Possessive string `json:"possessive"` // his/her/their
}

// DefaultPronouns returns they/them/their.
func DefaultPronouns() Pronouns {
	return Pronouns{
		Subject:    DefaultPronounSubject,
		Object:     DefaultPronounObject,
		Possessive: DefaultPronounPossessive,
	}
}

// PronounsOrDefault builds Pronouns from nullable stored columns, filling
// each absent form independently.
func PronounsOrDefault(subject, object, possessive *string) Pronouns {
	p := DefaultPronouns()
	if subject != nil {
		p.Subject = *subject
	}
	if object != nil {
		p.Object = *object
	}
	if possessive != nil {
		p.Possessive = *possessive
	}
	return p
}

// ReportPeriod is a reporting window (e.g. "initial", "february", "june").
// Rows are populated by an external collaborator; the store only reads them.
type ReportPeriod struct {
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	BoardID  *string `json:"boardId,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
	LockedAt *string `json:"lockedAt,omitempty"`
}

// Active reports whether the period is flagged active.
func (p ReportPeriod) Active() bool {
	return p.IsActive != nil && *p.IsActive
}

// EvidenceSnippet is a short observation the teacher recorded for a student.
type EvidenceSnippet struct {
	ID        string   `json:"id"`
	StudentID string   `json:"studentId"`
	Text      string   `json:"text"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"createdAt,omitempty"`
}
