// Package metrics defines the Prometheus collectors used by the ranking core
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the ranking core.
type Metrics struct {
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchResultsCount   prometheus.Histogram
	CandidatesScanned    prometheus.Counter
	CandidatesFiltered   prometheus.Counter
	TopsterRejectedTotal prometheus.Counter
	FilterErrorsTotal    *prometheus.CounterVec
	FacetValuesDistinct  *prometheus.GaugeVec
	DocsIndexedTotal     prometheus.Counter
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates all collectors and registers them on reg. Passing nil uses a
// fresh private registry, which keeps tests independent of each other.
func New(reg prometheus.Registerer) *Metrics {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &Metrics{
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Ranking pass latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of hits returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
			},
		),
		CandidatesScanned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_candidates_scanned_total",
				Help: "Candidates offered to the ranking pass.",
			},
		),
		CandidatesFiltered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_candidates_filtered_total",
				Help: "Candidates dropped by filter conditions.",
			},
		),
		TopsterRejectedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "topster_rejected_total",
				Help: "Candidates not retained by the top-K selector (duplicates or too weak).",
			},
		),
		FilterErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filter_errors_total",
				Help: "Rejected filter expressions by error kind.",
			},
			[]string{"kind"},
		),
		FacetValuesDistinct: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "facet_values_distinct",
				Help: "Distinct interned values per facet field.",
			},
			[]string{"field"},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Total documents whose attributes were indexed.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of result cache misses.",
			},
		),
		gatherer: gatherer,
	}

	reg.MustRegister(
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CandidatesScanned,
		m.CandidatesFiltered,
		m.TopsterRejectedTotal,
		m.FilterErrorsTotal,
		m.FacetValuesDistinct,
		m.DocsIndexedTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler for the registry m was
// registered on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
