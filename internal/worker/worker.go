// Package worker implements the crawl pipeline execution loop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pricepulse/alkoteka-crawler/internal/catalog"
	"github.com/pricepulse/alkoteka-crawler/internal/orchestrator"
	"github.com/pricepulse/alkoteka-crawler/internal/progress"
	queuememory "github.com/pricepulse/alkoteka-crawler/internal/queue/memory"
)

// Config controls Worker behavior.
type Config struct {
	// RunID identifies the crawl run on progress events and published rows.
	RunID [16]byte
	// Delay paces requests; zero disables pacing.
	Delay time.Duration
	// Topic routes published records; empty disables publishing.
	Topic string
	// ArchivePrefix prefixes raw payload snapshot paths.
	ArchivePrefix string
}

// Hasher digests raw payloads for archive paths.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Worker consumes fetch intents and executes the two-phase crawl pipeline:
// list responses fan out detail intents plus the next page, detail responses
// become normalized records.
type Worker struct {
	queue     catalog.Queue
	fetcher   catalog.Fetcher
	orch      *orchestrator.Orchestrator
	sink      catalog.RecordSink
	archive   catalog.Archive
	publisher catalog.Publisher
	hasher    Hasher
	clock     catalog.Clock
	emitter   progress.Emitter
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Worker. archive and publisher may be nil; the
// corresponding steps are skipped.
func New(
	queue catalog.Queue,
	fetcher catalog.Fetcher,
	orch *orchestrator.Orchestrator,
	sink catalog.RecordSink,
	archive catalog.Archive,
	publisher catalog.Publisher,
	hasher Hasher,
	clock catalog.Clock,
	emitter progress.Emitter,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:     queue,
		fetcher:   fetcher,
		orch:      orch,
		sink:      sink,
		archive:   archive,
		publisher: publisher,
		hasher:    hasher,
		clock:     clock,
		emitter:   emitter,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run blocks, consuming intents until the queue drains or the context ends.
func (w *Worker) Run(ctx context.Context) {
	for {
		intent, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, queuememory.ErrClosed) || ctx.Err() != nil {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.processIntent(ctx, intent)
		w.queue.Done()
	}
}

func (w *Worker) processIntent(ctx context.Context, intent catalog.Intent) {
	if !w.pace(ctx) {
		return
	}
	resp, err := w.fetcher.Fetch(ctx, catalog.FetchRequest{URL: intent.URL, Kind: intent.Kind})
	if err != nil {
		w.reportFailure(intent, progress.ReasonFetchFailure, err)
		return
	}

	switch intent.Kind {
	case catalog.KindList:
		w.handleList(ctx, intent, resp)
	case catalog.KindDetail:
		w.handleDetail(ctx, intent, resp)
	default:
		w.logger.Error("unknown intent kind", zap.String("kind", string(intent.Kind)))
	}
}

func (w *Worker) handleList(ctx context.Context, intent catalog.Intent, resp catalog.FetchResponse) {
	w.emit(progress.Event{
		Stage:    progress.StageListFetched,
		Category: intent.List.CategorySlug,
		Page:     intent.List.Page,
		URL:      intent.URL,
		Bytes:    int64(len(resp.Body)),
		Dur:      resp.Duration,
	})

	followups, err := w.orch.HandleList(resp.Body, intent.List)
	if err != nil {
		w.reportFailure(intent, progress.ReasonMalformedList, err)
		return
	}
	for _, next := range followups {
		if err := w.queue.Enqueue(ctx, next); err != nil {
			w.logger.Error("enqueue follow-up failed",
				zap.String("url", next.URL), zap.Error(err))
		}
	}
	w.logger.Debug("list page processed",
		zap.String("category", intent.List.CategorySlug),
		zap.Int("page", intent.List.Page),
		zap.Int("followups", len(followups)),
	)
}

func (w *Worker) handleDetail(ctx context.Context, intent catalog.Intent, resp catalog.FetchResponse) {
	w.emit(progress.Event{
		Stage: progress.StageDetailFetched,
		URL:   intent.URL,
		Bytes: int64(len(resp.Body)),
		Dur:   resp.Duration,
	})

	if err := w.archiveRaw(ctx, intent, resp.Body); err != nil {
		// Snapshots are best effort; the record still goes out.
		w.logger.Warn("archive raw payload failed", zap.String("url", intent.URL), zap.Error(err))
	}

	record, err := w.orch.HandleDetail(resp.Body, intent.Detail, w.clock.Now())
	if err != nil {
		w.reportFailure(intent, classifyFailure(err), err)
		return
	}
	if err := w.sink.Emit(ctx, record); err != nil {
		w.reportFailure(intent, progress.ReasonSinkFailure, err)
		return
	}
	w.publishRecord(ctx, record)
	w.emit(progress.Event{Stage: progress.StageRecordEmitted, URL: intent.URL})
	w.logger.Debug("record emitted", zap.String("rpc", record.RPC), zap.String("url", record.URL))
}

func (w *Worker) archiveRaw(ctx context.Context, intent catalog.Intent, body []byte) error {
	if w.archive == nil || w.hasher == nil {
		return nil
	}
	hash, err := w.hasher.Hash(body)
	if err != nil {
		return fmt.Errorf("hash payload: %w", err)
	}
	path := fmt.Sprintf("%s.json", hash)
	if w.cfg.ArchivePrefix != "" {
		path = fmt.Sprintf("%s/%s", w.cfg.ArchivePrefix, path)
	}
	if _, err := w.archive.PutObject(ctx, path, "application/json", body); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (w *Worker) publishRecord(ctx context.Context, record catalog.Record) {
	if w.publisher == nil || w.cfg.Topic == "" {
		return
	}
	if _, err := w.publisher.Publish(ctx, w.cfg.Topic, record); err != nil {
		w.logger.Warn("publish record failed", zap.String("rpc", record.RPC), zap.Error(err))
	}
}

func (w *Worker) reportFailure(intent catalog.Intent, reason string, err error) {
	w.emit(progress.Event{
		Stage:    progress.StageFailure,
		Category: intent.List.CategorySlug,
		Page:     intent.List.Page,
		URL:      intent.URL,
		Reason:   reason,
		Note:     err.Error(),
	})
	w.logger.Warn("request failed",
		zap.String("kind", string(intent.Kind)),
		zap.String("url", intent.URL),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

func (w *Worker) emit(evt progress.Event) {
	if w.emitter == nil {
		return
	}
	evt.RunID = w.cfg.RunID
	evt.TS = w.clock.Now()
	w.emitter.Emit(evt)
}

func (w *Worker) pace(ctx context.Context) bool {
	if w.cfg.Delay <= 0 {
		return true
	}
	timer := time.NewTimer(w.cfg.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func classifyFailure(err error) string {
	switch {
	case errors.Is(err, catalog.ErrMissingDescriptionBlocks):
		return progress.ReasonMissingDescBlocks
	case errors.Is(err, catalog.ErrMissingFilterLabels):
		return progress.ReasonMissingFilters
	case errors.Is(err, catalog.ErrMalformedDetailPayload):
		return progress.ReasonMalformedDetail
	default:
		return progress.ReasonMalformedDetail
	}
}
