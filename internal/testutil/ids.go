package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDGenerator returns predictable IDs: prefix-1, prefix-2, ...
//
// This enables deterministic test execution and golden snapshot comparison.
// The same scenario run with a fresh SequenceIDGenerator produces identical
// IDs every time.
//
// Thread-safety: SequenceIDGenerator is safe for concurrent use via internal mutex.
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDGenerator creates a generator with the given prefix.
// If prefix is empty, IDs are "id-1", "id-2", ...
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceIDGenerator{prefix: prefix}
}

// Generate returns the next ID in the sequence.
func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
