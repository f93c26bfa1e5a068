package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pricepulse/alkoteka-crawler/internal/catalog"
	"github.com/pricepulse/alkoteka-crawler/internal/sink/memory"
)

type failingSink struct {
	emitErr  error
	closeErr error
}

func (s *failingSink) Emit(context.Context, catalog.Record) error { return s.emitErr }
func (s *failingSink) Close() error                               { return s.closeErr }

func TestMultiFansOut(t *testing.T) {
	t.Parallel()

	first := memory.New()
	second := memory.New()
	m := NewMulti(first, nil, second)

	require.NoError(t, m.Emit(context.Background(), catalog.Record{RPC: "p-1"}))
	require.Len(t, first.Records(), 1)
	require.Len(t, second.Records(), 1)
	require.NoError(t, m.Close())
}

func TestMultiEmitContinuesPastFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	healthy := memory.New()
	m := NewMulti(&failingSink{emitErr: boom}, healthy)

	err := m.Emit(context.Background(), catalog.Record{RPC: "p-1"})
	require.ErrorIs(t, err, boom)
	require.Len(t, healthy.Records(), 1)
}

func TestMultiCloseJoinsErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("close boom")
	m := NewMulti(&failingSink{closeErr: boom}, memory.New())
	require.ErrorIs(t, m.Close(), boom)
}
