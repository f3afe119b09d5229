package contract

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/vgreport/internal/report"
)

//go:embed contract.cue
var schemaSource string

// Definition names in contract.cue.
const (
	DefStudent  = "#Student"
	DefDraft    = "#Draft"
	DefEvidence = "#Evidence"
)

// Evidence is the payload for adding an evidence snippet.
type Evidence struct {
	StudentID string   `json:"studentId"`
	Text      string   `json:"text"`
	Tags      []string `json:"tags"`
}

// Error is a payload validation failure with the CUE position of the
// offending value when one is known.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// cue.Context is not safe for concurrent use.
var (
	mu     sync.Mutex
	cueCtx *cue.Context
	schema cue.Value
)

func loadSchema() (cue.Value, error) {
	if cueCtx == nil {
		cueCtx = cuecontext.New()
		schema = cueCtx.CompileString(schemaSource, cue.Filename("contract.cue"))
	}
	if err := schema.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return schema, nil
}

// DecodeStudent validates data against #Student and decodes it.
// Needs is never nil in the result.
func DecodeStudent(data []byte) (report.Student, error) {
	var st report.Student
	if err := decode(DefStudent, "student.json", data, &st); err != nil {
		return report.Student{}, err
	}
	if st.Needs == nil {
		st.Needs = []string{}
	}
	return st, nil
}

// DecodeDraft validates data against #Draft and decodes it.
// SlotValues is never nil in the result.
func DecodeDraft(data []byte) (report.Draft, error) {
	var d report.Draft
	if err := decode(DefDraft, "draft.json", data, &d); err != nil {
		return report.Draft{}, err
	}
	if d.SlotValues == nil {
		d.SlotValues = map[string]any{}
	}
	return d, nil
}

// DecodeEvidence validates data against #Evidence and decodes it.
func DecodeEvidence(data []byte) (Evidence, error) {
	var e Evidence
	if err := decode(DefEvidence, "evidence.json", data, &e); err != nil {
		return Evidence{}, err
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e, nil
}

func decode(def, filename string, data []byte, out any) error {
	mu.Lock()
	defer mu.Unlock()

	v, err := unify(def, filename, data)
	if err != nil {
		return err
	}
	if err := v.Decode(out); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// unify must be called with mu held.
func unify(def, filename string, data []byte) (cue.Value, error) {
	s, err := loadSchema()
	if err != nil {
		return cue.Value{}, err
	}

	d := s.LookupPath(cue.ParsePath(def))
	if !d.Exists() {
		return cue.Value{}, &Error{Field: def, Message: "unknown definition"}
	}

	if strings.TrimSpace(string(data)) == "" {
		return cue.Value{}, &Error{Field: "json", Message: "payload is empty"}
	}
	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return cue.Value{}, &Error{Field: "json", Message: err.Error()}
	}
	payload := cueCtx.BuildExpr(expr)
	if err := payload.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}

	v := d.Unify(payload)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return v, nil
}

// formatCUEError reports the first CUE error with its path and position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := strings.Join(first.Path(), ".")
	if field == "" {
		field = "payload"
	}
	format, args := first.Msg()
	e := &Error{Field: field, Message: fmt.Sprintf(format, args...)}
	if positions := errors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}
