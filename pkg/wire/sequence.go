package wire

import (
	"sync"

	"github.com/google/uuid"
)

// Sequence owns the process-wide monotonic counters behind envelope and
// item identity. Transaction ids and item ids advance independently: a
// transaction id correlates one envelope with its response, while item ids
// are unique across every item ever built from this sequence, which is
// what makes item-based correlation of feature responses possible.
//
// Sequence is safe for concurrent use. Callers inject one Sequence per
// connection rather than relying on package-level state, so tests control
// numbering by constructing their own.
type Sequence struct {
	mu              sync.Mutex
	nextTransaction int
	nextItem        int
	senderID        string
}

// NewSequence creates a sequence with both counters at zero and a fresh
// random sender id.
func NewSequence() *Sequence {
	return &Sequence{senderID: uuid.NewString()}
}

// SenderID returns the stable per-process client identifier stamped on
// every outbound envelope.
func (s *Sequence) SenderID() string {
	return s.senderID
}

// NextTransaction returns the next transaction id. Ids are never reused;
// the counter only moves forward.
func (s *Sequence) NextTransaction() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextTransaction
	s.nextTransaction++
	return id
}

// NextItem returns the next item id from the global item counter.
func (s *Sequence) NextItem() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextItem
	s.nextItem++
	return id
}
