// Package memory contains an in-memory record sink for tests.
package memory

import (
	"context"
	"sync"

	"github.com/pricepulse/alkoteka-crawler/internal/catalog"
)

// Sink stores emitted records for inspection.
type Sink struct {
	mu      sync.RWMutex
	records []catalog.Record
}

// New returns a memory Sink.
func New() *Sink {
	return &Sink{}
}

// Emit records the record.
func (s *Sink) Emit(_ context.Context, record catalog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Records returns a copy of the emitted records.
func (s *Sink) Records() []catalog.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Close implements catalog.RecordSink; it performs no action.
func (s *Sink) Close() error {
	return nil
}
