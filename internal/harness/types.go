package harness

// Step outcomes other than store error kinds.
const (
	OutcomeOK       = "ok"
	OutcomeContract = "CONTRACT"
	OutcomeError    = "ERROR"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int                    `json:"seq"`
	Op      string                 `json:"op"`
	Args    map[string]interface{} `json:"args,omitempty"`
	Outcome string                 `json:"outcome"`
	Message string                 `json:"message,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step matched its expected outcome and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step mismatch and assertion failure messages.
	Errors []string `json:"errors,omitempty"`

	// Snapshot is the store state captured after the last step.
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step to the trace and returns its sequence number.
func (r *Result) AddStep(op string, args map[string]interface{}, outcome, message string) int {
	seq := len(r.Trace) + 1
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     seq,
		Op:      op,
		Args:    args,
		Outcome: outcome,
		Message: message,
	})
	return seq
}
