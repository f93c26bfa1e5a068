// Package sink provides helpers over catalog.RecordSink implementations.
package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/pricepulse/alkoteka-crawler/internal/catalog"
)

// Multi fans one record out to several sinks. Emit fails if any sink fails;
// the remaining sinks still receive the record.
type Multi struct {
	sinks []catalog.RecordSink
}

// NewMulti builds a Multi over the given sinks; nil entries are skipped.
func NewMulti(sinks ...catalog.RecordSink) *Multi {
	kept := make([]catalog.RecordSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Multi{sinks: kept}
}

// Emit delivers the record to every sink and joins the failures.
func (m *Multi) Emit(ctx context.Context, record catalog.Record) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Emit(ctx, record); err != nil {
			errs = append(errs, fmt.Errorf("sink emit: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink and joins the failures.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sink close: %w", err))
		}
	}
	return errors.Join(errs...)
}
