// Package observability bundles Prometheus collectors for the crawler.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the crawl collectors on a dedicated registry.
// A nil *Metrics is valid and turns every method into a no-op.
type Metrics struct {
	Registry       *prometheus.Registry
	PagesFetched   prometheus.Counter
	FetchErrors    *prometheus.CounterVec
	WordsMerged    prometheus.Counter
	FetchDuration  prometheus.Histogram
	QueueDepth     prometheus.Gauge
	PoliteDelays   prometheus.Counter
}

// NewMetrics constructs and registers all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pagesFetched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wikiharvest_pages_fetched_total",
		Help: "Total wiki pages fetched successfully.",
	})
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikiharvest_fetch_errors_total",
			Help: "Total per-page failures by category.",
		},
		[]string{"category"},
	)
	wordsMerged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wikiharvest_words_merged_total",
		Help: "Total word occurrences merged into the accumulator.",
	})
	fetchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wikiharvest_fetch_duration_seconds",
		Help:    "Latency of page fetches.",
		Buckets: prometheus.DefBuckets,
	})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wikiharvest_queue_depth",
		Help: "Entries currently waiting in the crawl queue.",
	})
	politeDelays := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wikiharvest_polite_delays_total",
		Help: "Politeness delays observed between fetches.",
	})

	registry.MustRegister(pagesFetched, fetchErrors, wordsMerged, fetchDuration, queueDepth, politeDelays)

	return &Metrics{
		Registry:      registry,
		PagesFetched:  pagesFetched,
		FetchErrors:   fetchErrors,
		WordsMerged:   wordsMerged,
		FetchDuration: fetchDuration,
		QueueDepth:    queueDepth,
		PoliteDelays:  politeDelays,
	}
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// IncPageFetched counts a successful fetch.
func (m *Metrics) IncPageFetched() {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
}

// IncFetchError counts a per-page failure by category.
func (m *Metrics) IncFetchError(category string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(category).Inc()
}

// AddWordsMerged counts word occurrences merged into the accumulator.
func (m *Metrics) AddWordsMerged(n int) {
	if m == nil {
		return
	}
	m.WordsMerged.Add(float64(n))
}

// ObserveFetchDuration records a page fetch latency.
func (m *Metrics) ObserveFetchDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// SetQueueDepth records the current crawl queue size.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

// IncPoliteDelay counts an observed inter-request delay.
func (m *Metrics) IncPoliteDelay() {
	if m == nil {
		return
	}
	m.PoliteDelays.Inc()
}
