package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pricepulse/alkoteka-crawler/internal/progress"
)

// PrometheusSink exports crawl progress metrics. It owns the collectors for
// page fetches, emitted records, and per-reason failures.
type PrometheusSink struct {
	listPages     *prometheus.CounterVec
	detailPages   prometheus.Counter
	records       prometheus.Counter
	failures      *prometheus.CounterVec
	fetchBytes    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		listPages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawl_list_pages_total",
			Help: "List pages fetched, partitioned by category.",
		}, []string{"category"}),
		detailPages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crawl_detail_pages_total",
			Help: "Product detail pages fetched.",
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crawl_records_emitted_total",
			Help: "Normalized records emitted to sinks.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawl_failures_total",
			Help: "Per-request failures, partitioned by reason.",
		}, []string{"reason"}),
		fetchBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawl_fetch_bytes_total",
			Help: "Bytes downloaded, partitioned by request kind.",
		}, []string{"kind"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crawl_fetch_duration_seconds",
			Help:    "Fetch duration, partitioned by request kind.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"kind"}),
	}
	for _, collector := range []prometheus.Collector{
		s.listPages,
		s.detailPages,
		s.records,
		s.failures,
		s.fetchBytes,
		s.fetchDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors using the provided batch. Safe for
// concurrent use.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageListFetched:
		s.listPages.WithLabelValues(evt.Category).Inc()
		s.observeFetch("list", evt)
	case progress.StageDetailFetched:
		s.detailPages.Inc()
		s.observeFetch("detail", evt)
	case progress.StageRecordEmitted:
		s.records.Inc()
	case progress.StageFailure:
		s.failures.WithLabelValues(evt.Reason).Inc()
	}
}

func (s *PrometheusSink) observeFetch(kind string, evt progress.Event) {
	if evt.Bytes > 0 {
		s.fetchBytes.WithLabelValues(kind).Add(float64(evt.Bytes))
	}
	if evt.Dur > 0 {
		s.fetchDuration.WithLabelValues(kind).Observe(evt.Dur.Seconds())
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
