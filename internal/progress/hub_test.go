package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *captureSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return nil
}

func (s *captureSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func validEvent(stage Stage) Event {
	return Event{
		RunID:    [16]byte{1},
		TS:       time.Unix(100, 0),
		Stage:    stage,
		Category: "vodka",
		URL:      "https://alkoteka.com/web-api/v1/product/x",
		Reason:   ReasonFetchFailure,
	}
}

func TestHubDeliversEventsToSinks(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{FlushInterval: 10 * time.Millisecond}, sink)

	hub.Emit(validEvent(StageListFetched))
	hub.Emit(validEvent(StageRecordEmitted))

	require.Eventually(t, func() bool {
		return sink.count() == 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Close(context.Background()))
	require.True(t, sink.closed)
}

func TestHubCloseFlushesPending(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{FlushInterval: time.Hour}, sink)

	hub.Emit(validEvent(StageListFetched))
	hub.Emit(validEvent(StageDetailFetched))
	require.NoError(t, hub.Close(context.Background()))

	require.Equal(t, 2, sink.count())
	require.True(t, sink.closed)
}

func TestHubDiscardsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{FlushInterval: 10 * time.Millisecond}, sink)

	hub.Emit(Event{})
	hub.Emit(Event{RunID: [16]byte{1}, TS: time.Unix(1, 0), Stage: StageListFetched})
	require.NoError(t, hub.Close(context.Background()))

	require.Equal(t, 0, sink.count())
}

func TestHubDropsUnderBackpressure(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{BufferSize: 1, FlushInterval: time.Hour}, sink)
	defer hub.Close(context.Background())

	for i := 0; i < 100; i++ {
		hub.Emit(validEvent(StageRecordEmitted))
	}
	require.Positive(t, hub.Dropped())
}

func TestHubEmitAfterCloseIsNoop(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{}, sink)
	require.NoError(t, hub.Close(context.Background()))

	hub.Emit(validEvent(StageRecordEmitted))
	require.Equal(t, 0, sink.count())
}

func TestHubCloseIdempotent(t *testing.T) {
	t.Parallel()

	hub := NewHub(Config{}, &captureSink{})
	require.NoError(t, hub.Close(context.Background()))
	require.NoError(t, hub.Close(context.Background()))
}

func TestNilHubIsSafe(t *testing.T) {
	t.Parallel()

	var hub *Hub
	hub.Emit(validEvent(StageRecordEmitted))
	require.NoError(t, hub.Close(context.Background()))
}
