package sinks

import (
	"context"
	"sync"
	"time"

	"github.com/pricepulse/alkoteka-crawler/internal/progress"
)

// Snapshot is a point-in-time view of crawl progress served by the status
// API.
type Snapshot struct {
	RunID       string           `json:"run_id"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  *time.Time       `json:"finished_at,omitempty"`
	Done        bool             `json:"done"`
	ListPages   int64            `json:"list_pages"`
	DetailPages int64            `json:"detail_pages"`
	Records     int64            `json:"records"`
	Failures    map[string]int64 `json:"failures"`
}

// StoreSink accumulates counters in memory for status queries.
type StoreSink struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStoreSink creates an empty StoreSink.
func NewStoreSink() *StoreSink {
	return &StoreSink{snap: Snapshot{Failures: map[string]int64{}}}
}

// Consume folds the batch into the running snapshot.
func (s *StoreSink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageRunStart:
			s.snap.RunID = evt.RunUUID().String()
			s.snap.StartedAt = evt.TS
		case progress.StageRunDone:
			ts := evt.TS
			s.snap.FinishedAt = &ts
			s.snap.Done = true
		case progress.StageListFetched:
			s.snap.ListPages++
		case progress.StageDetailFetched:
			s.snap.DetailPages++
		case progress.StageRecordEmitted:
			s.snap.Records++
		case progress.StageFailure:
			s.snap.Failures[evt.Reason]++
		}
	}
	return nil
}

// Snapshot returns a copy of the current counters.
func (s *StoreSink) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snap
	out.Failures = make(map[string]int64, len(s.snap.Failures))
	for k, v := range s.snap.Failures {
		out.Failures[k] = v
	}
	return out
}

// Close implements the Sink interface; it performs no action.
func (s *StoreSink) Close(context.Context) error {
	return nil
}
