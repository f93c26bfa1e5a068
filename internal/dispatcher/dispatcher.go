// Package dispatcher manages worker fan-out over the intent queue.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/pricepulse/alkoteka-crawler/internal/catalog"
	"github.com/pricepulse/alkoteka-crawler/internal/worker"
)

// Dispatcher fans out queued fetch intents to a pool of workers.
type Dispatcher struct {
	queue   catalog.Queue
	workers []*worker.Worker
}

// New creates a Dispatcher.
func New(queue catalog.Queue, workers []*worker.Worker) *Dispatcher {
	return &Dispatcher{
		queue:   queue,
		workers: workers,
	}
}

// Run starts all workers and blocks until every worker exits, which happens
// when the queue drains to its terminal state or the context ends.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, w := range d.workers {
		wg.Add(1)
		go func(wk *worker.Worker) {
			defer wg.Done()
			wk.Run(ctx)
		}(w)
	}
	wg.Wait()
}

// Seed enqueues the initial intents of the crawl.
func (d *Dispatcher) Seed(ctx context.Context, intents []catalog.Intent) error {
	for _, intent := range intents {
		if err := d.queue.Enqueue(ctx, intent); err != nil {
			return fmt.Errorf("seed enqueue: %w", err)
		}
	}
	return nil
}
