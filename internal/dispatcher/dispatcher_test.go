package dispatcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pricepulse/alkoteka-crawler/internal/catalog"
	"github.com/pricepulse/alkoteka-crawler/internal/orchestrator"
	queuememory "github.com/pricepulse/alkoteka-crawler/internal/queue/memory"
	sinkmemory "github.com/pricepulse/alkoteka-crawler/internal/sink/memory"
	"github.com/pricepulse/alkoteka-crawler/internal/worker"
)

const (
	testBase = "https://alkoteka.com/web-api/v1"
	testCity = "city-1"
)

type mapFetcher struct {
	mu        sync.Mutex
	responses map[string][]byte
}

func (f *mapFetcher) Fetch(_ context.Context, req catalog.FetchRequest) (catalog.FetchResponse, error) {
	f.mu.Lock()
	body, ok := f.responses[req.URL]
	f.mu.Unlock()
	if !ok {
		return catalog.FetchResponse{}, fmt.Errorf("%w: unexpected url %s", catalog.ErrFetchFailure, req.URL)
	}
	return catalog.FetchResponse{
		URL:        req.URL,
		StatusCode: http.StatusOK,
		Body:       body,
	}, nil
}

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Unix(1700000000, 0) }

func detailBody(uuid string) []byte {
	return []byte(fmt.Sprintf(`{
		"results": {
			"uuid": %q,
			"name": "Vodka",
			"description_blocks": [],
			"price": 500,
			"prev_price": 500,
			"filter_labels": []
		}
	}`, uuid))
}

func TestDispatcherRunsPoolToCompletion(t *testing.T) {
	t.Parallel()

	responses := map[string][]byte{}
	var listResults []string
	for i := 1; i <= 6; i++ {
		slug := fmt.Sprintf("product-%d", i)
		listResults = append(listResults, fmt.Sprintf(
			`{"slug": %q, "product_url": "https://alkoteka.com/p/%s"}`, slug, slug))
		responses[catalog.BuildDetailURL(testBase, testCity, slug)] = detailBody(slug)
	}
	listURL := catalog.BuildListURL(testBase, testCity, "vodka", 1, 20)
	responses[listURL] = []byte(fmt.Sprintf(`{"results": [%s]}`,
		strings.Join(listResults, ",")))

	queue := queuememory.NewQueue(16)
	sink := sinkmemory.New()
	orch := orchestrator.New(orchestrator.Config{BaseURL: testBase, CityUUID: testCity, PerPage: 20})
	fetcher := &mapFetcher{responses: responses}

	var workers []*worker.Worker
	for i := 0; i < 3; i++ {
		workers = append(workers, worker.New(
			queue, fetcher, orch, sink, nil, nil, nil, stubClock{}, nil,
			worker.Config{}, zap.NewNop(),
		))
	}
	d := New(queue, workers)

	ctx := context.Background()
	require.NoError(t, d.Seed(ctx, orch.Seed([]catalog.Category{{Slug: "vodka"}})))

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not drain the crawl")
	}

	records := sink.Records()
	require.Len(t, records, 6)
	seen := map[string]bool{}
	for _, rec := range records {
		seen[rec.RPC] = true
	}
	require.Len(t, seen, 6)
}

func TestSeedFailsOnClosedQueue(t *testing.T) {
	t.Parallel()

	queue := queuememory.NewQueue(1)
	queue.Close()

	d := New(queue, nil)
	err := d.Seed(context.Background(), []catalog.Intent{{URL: "x"}})
	require.ErrorIs(t, err, queuememory.ErrClosed)
}
