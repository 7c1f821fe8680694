package domain

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces fresh, globally unique identifiers.
type IDGenerator interface {
	NewID(prefix string) string
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func(prefix string) string

// NewID calls f(prefix).
func (f IDFunc) NewID(prefix string) string { return f(prefix) }

// UUIDs returns a generator of "<prefix>_<uuid>" ids.
func UUIDs() IDGenerator {
	return IDFunc(func(prefix string) string {
		return prefix + "_" + uuid.NewString()
	})
}

// Sequence generates deterministic "<prefix>_<n>" ids, counting per prefix.
// Safe for concurrent use.
type Sequence struct {
	mu   sync.Mutex
	next map[string]int
}

// NewSequence creates an empty Sequence.
func NewSequence() *Sequence {
	return &Sequence{next: make(map[string]int)}
}

// NewID returns the next id for prefix, starting at 1.
func (s *Sequence) NewID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next[prefix]++
	return fmt.Sprintf("%s_%d", prefix, s.next[prefix])
}
