// Package contract validates JSON payloads arriving at the operation
// boundary against an embedded CUE schema before they reach the store.
//
// Each Decode function unifies the payload with one schema definition,
// requires the result to be concrete, and decodes it into the matching
// report type. Definitions are closed, so unknown fields are rejected.
package contract
