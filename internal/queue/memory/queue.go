// Package memory provides the in-process intent queue driving a crawl run.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pricepulse/alkoteka-crawler/internal/catalog"
)

// ErrClosed is returned by Dequeue once the crawl has drained.
var ErrClosed = errors.New("queue closed")

// Queue is an unbounded intent queue with context-aware operations. It tracks
// outstanding work: every Enqueue adds one pending unit and every Done
// removes one; when the count reaches zero the queue closes itself and
// blocked consumers observe ErrClosed. A worker must call Done only after
// enqueueing the follow-up intents of the item it dequeued, otherwise the
// count can reach zero while the crawl is still growing.
type Queue struct {
	mu      sync.Mutex
	items   []catalog.Intent
	pending int
	closed  bool
	notify  chan struct{}
	done    chan struct{}
}

// NewQueue constructs a queue with the provided initial capacity.
func NewQueue(capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{
		items:  make([]catalog.Intent, 0, capacity),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Enqueue adds an intent and one pending unit.
func (q *Queue) Enqueue(ctx context.Context, intent catalog.Intent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("enqueue canceled: %w", err)
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, intent)
	q.pending++
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue pops the next intent, blocking until one arrives, the queue
// closes, or the context ends.
func (q *Queue) Dequeue(ctx context.Context) (catalog.Intent, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			intent := q.items[0]
			q.items = q.items[1:]
			remaining := len(q.items)
			q.mu.Unlock()
			if remaining > 0 {
				select {
				case q.notify <- struct{}{}:
				default:
				}
			}
			return intent, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return catalog.Intent{}, ErrClosed
		}

		select {
		case <-ctx.Done():
			return catalog.Intent{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
		case <-q.done:
			return catalog.Intent{}, ErrClosed
		case <-q.notify:
		}
	}
}

// Done reports one dequeued intent as processed. The call that drops the
// pending count to zero closes the queue.
func (q *Queue) Done() {
	q.mu.Lock()
	q.pending--
	drained := q.pending == 0 && !q.closed
	if drained {
		q.closed = true
	}
	q.mu.Unlock()
	if drained {
		close(q.done)
	}
}

// Close force-closes the queue, releasing blocked consumers. Used on
// shutdown paths that do not wait for natural drain.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	close(q.done)
}
