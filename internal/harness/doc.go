// Package harness runs scripted store scenarios and captures deterministic
// snapshots of the resulting state.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	periods:
//	  - id: initial
//	    name: Initial Observations
//	    active: true
//	steps:
//	  - op: upsert_student
//	    args: { id: S1, firstName: Ada, lastName: Byron }
//	  - op: upsert_draft
//	    args: { studentId: S1, reportPeriodId: initial, frame: k, section: key_learning }
//	  - op: delete_student
//	    args: { id: S9 }
//	    expect: ok
//	snapshot:
//	  drafts: [initial]
//	  settings: [board]
//	  evidence: [S1]
//	assertions:
//	  - type: row_count
//	    table: drafts
//	    count: 1
//	  - type: final_state
//	    table: drafts
//	    where: { id: "S1:initial:k:key_learning" }
//	    expect: { author: teacher, status: approved }
//
// Step args are JSON-encoded and decoded through package contract, so a
// scenario exercises the same validation as the command line.
//
// # Operations
//
//   - upsert_student: args is a student payload
//   - delete_student: args.id
//   - upsert_draft: args is a draft payload
//   - set_setting: args.key and args.value
//   - add_evidence: args is an evidence payload
//
// Each step's outcome is "ok", a store error kind ("DATA", "QUERY", ...),
// or "CONTRACT" for payload validation failures. A step with no expect
// clause must succeed.
//
// # Assertion Types
//
//   - trace_count: an op appears exactly N times in the trace
//   - row_count: a snapshot table has exactly N rows matching where
//   - final_state: exactly one snapshot row matches where, and it
//     contains the expected values
//
// # Deterministic Testing
//
// Every scenario runs against a fresh store in a temporary directory, with
// testutil.StepClock timestamps and testutil.SequenceIDGenerator evidence
// IDs, so the same scenario always renders the same snapshot.
package harness
