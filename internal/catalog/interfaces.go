package catalog

import (
	"context"
	"time"
)

// Fetcher executes one HTTP GET and returns the body plus metadata.
// Retry and backoff policy belongs to implementations, not callers.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// FetchRequest captures everything needed to fetch one API URL.
type FetchRequest struct {
	URL  string
	Kind Kind
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Queue provides enqueue/dequeue semantics for fetch intents.
type Queue interface {
	Enqueue(ctx context.Context, intent Intent) error
	Dequeue(ctx context.Context) (Intent, error)
	// Done reports one dequeued intent as fully processed, including any
	// follow-up enqueues it produced.
	Done()
}

// RecordSink receives normalized records as they are produced.
type RecordSink interface {
	Emit(ctx context.Context, record Record) error
	Close() error
}

// Archive persists raw payload snapshots and returns a URI.
type Archive interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes per-record events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces crawl run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
