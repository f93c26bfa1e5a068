package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pricepulse/alkoteka-crawler/internal/progress"
)

func TestStoreSinkAccumulatesCounters(t *testing.T) {
	t.Parallel()

	store := NewStoreSink()
	runID := progress.UUIDToBytes(uuid.New())
	start := time.Unix(100, 0)
	finish := time.Unix(200, 0)

	err := store.Consume(context.Background(), []progress.Event{
		{RunID: runID, TS: start, Stage: progress.StageRunStart},
		{Stage: progress.StageListFetched, Category: "vodka", Page: 1},
		{Stage: progress.StageListFetched, Category: "vodka", Page: 2},
		{Stage: progress.StageDetailFetched},
		{Stage: progress.StageRecordEmitted},
		{Stage: progress.StageFailure, Reason: progress.ReasonMalformedDetail},
		{Stage: progress.StageFailure, Reason: progress.ReasonMalformedDetail},
		{Stage: progress.StageFailure, Reason: progress.ReasonFetchFailure},
		{RunID: runID, TS: finish, Stage: progress.StageRunDone},
	})
	require.NoError(t, err)

	snap := store.Snapshot()
	require.Equal(t, uuid.UUID(runID).String(), snap.RunID)
	require.Equal(t, start, snap.StartedAt)
	require.NotNil(t, snap.FinishedAt)
	require.Equal(t, finish, *snap.FinishedAt)
	require.True(t, snap.Done)
	require.Equal(t, int64(2), snap.ListPages)
	require.Equal(t, int64(1), snap.DetailPages)
	require.Equal(t, int64(1), snap.Records)
	require.Equal(t, int64(2), snap.Failures[progress.ReasonMalformedDetail])
	require.Equal(t, int64(1), snap.Failures[progress.ReasonFetchFailure])
}

func TestStoreSinkSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	store := NewStoreSink()
	require.NoError(t, store.Consume(context.Background(), []progress.Event{
		{Stage: progress.StageFailure, Reason: progress.ReasonFetchFailure},
	}))

	snap := store.Snapshot()
	snap.Failures[progress.ReasonFetchFailure] = 99

	require.Equal(t, int64(1), store.Snapshot().Failures[progress.ReasonFetchFailure])
}
