// Package executor runs the ranking pass of a query: it filters the scored
// candidates produced by the matching stage, keeps the best K in a Topster,
// and tallies facet counts over every candidate that passed the filters.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Adithya-Monish-Kumar-K/search-core/internal/indexer/collection"
	"github.com/Adithya-Monish-Kumar-K/search-core/internal/indexer/facet"
	"github.com/Adithya-Monish-Kumar-K/search-core/internal/searcher/topster"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-core/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/tracing"
)

// cancelCheckInterval is how many candidates are scanned between context
// checks.
const cancelCheckInterval = 1024

// Candidate is a document matched by the text stage, with its match score.
type Candidate struct {
	DocID uint32 `json:"doc_id"`
	Score uint64 `json:"score"`
}

// Query holds the ranking-side parameters of a search.
type Query struct {
	Filters []string `json:"filter_by,omitempty"`
	SortBy  []string `json:"sort_by,omitempty"`
	FacetBy []string `json:"facet_by,omitempty"`
	Limit   int      `json:"limit"`
}

type Hit struct {
	DocID     uint32 `json:"doc_id"`
	Score     uint64 `json:"score"`
	Tiebreak1 int64  `json:"tiebreak1"`
	Tiebreak2 int64  `json:"tiebreak2"`
}

type SearchResult struct {
	Found  int           `json:"found"`
	Hits   []Hit         `json:"hits"`
	Facets []facet.Facet `json:"facets,omitempty"`
}

// Executor evaluates queries against one collection. It keeps no per-query
// state, so one Executor may serve concurrent queries.
type Executor struct {
	coll    *collection.Collection
	cfg     config.SearchConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates an Executor. m may be nil to disable instrumentation. Limits
// in cfg that are out of range are clamped: at most two sort fields, and
// non-positive result limits fall back to topster.DefaultCapacity.
func New(coll *collection.Collection, cfg config.SearchConfig, m *metrics.Metrics) *Executor {
	return &Executor{
		coll:    coll,
		cfg:     normalizeConfig(cfg),
		metrics: m,
		logger:  slog.Default().With("component", "query-executor", "collection", coll.Name()),
	}
}

// Execute ranks candidates under q. Candidates are scanned in order; if the
// same DocID appears twice only its first occurrence is ranked.
func (e *Executor) Execute(ctx context.Context, q Query, candidates []Candidate) (*SearchResult, error) {
	start := time.Now()
	_, compileSpan := tracing.StartChildSpan(ctx, "executor.compile")
	p, err := e.compile(q)
	compileSpan.End()
	if err != nil {
		e.recordError(err)
		logger.FromContext(ctx, e.logger).Warn("query rejected", "error", err)
		return nil, err
	}

	_, scanSpan := tracing.StartChildSpan(ctx, "executor.scan")
	top := topster.New(p.limit)
	matched := roaring.New()
	var filtered, rejected int
	for i, c := range candidates {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				scanSpan.End()
				e.recordError(err)
				return nil, err
			}
		}
		if !p.matches(c.DocID) {
			filtered++
			continue
		}
		matched.Add(c.DocID)
		if !top.Add(uint64(c.DocID), c.Score, p.tiebreaks[0](c.DocID), p.tiebreaks[1](c.DocID)) {
			rejected++
		}
	}
	top.Sort()
	scanSpan.SetAttr("candidates", len(candidates))
	scanSpan.SetAttr("filtered", filtered)
	scanSpan.End()

	result := &SearchResult{
		Found: int(matched.GetCardinality()),
		Hits:  make([]Hit, top.Len()),
	}
	for i := range result.Hits {
		kv := top.KVAt(i)
		result.Hits[i] = Hit{
			DocID:     uint32(kv.Key),
			Score:     kv.Rank,
			Tiebreak1: kv.Tiebreak1,
			Tiebreak2: kv.Tiebreak2,
		}
	}
	if len(p.facetBy) > 0 {
		_, facetSpan := tracing.StartChildSpan(ctx, "executor.facets")
		e.coll.ReadFacets(func(facets map[string]*facet.ValueIndex) {
			for _, name := range p.facetBy {
				f := facet.Count(name, facets[name], matched)
				if e.cfg.MaxFacetSize > 0 {
					f = f.Trim(e.cfg.MaxFacetSize)
				}
				result.Facets = append(result.Facets, f)
				e.observeFacetSize(name, facets[name].Len())
			}
		})
		facetSpan.End()
	}

	e.observe(len(candidates), filtered, rejected, result, time.Since(start))
	logger.FromContext(ctx, e.logger).Debug("ranking pass complete",
		"candidates", len(candidates),
		"filtered", filtered,
		"found", result.Found,
		"returned", len(result.Hits),
		"limit", p.limit,
		"latency", time.Since(start),
	)
	return result, nil
}

func normalizeConfig(cfg config.SearchConfig) config.SearchConfig {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = topster.DefaultCapacity
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > cfg.MaxResults {
		cfg.DefaultLimit = min(topster.DefaultCapacity, cfg.MaxResults)
	}
	cfg.MaxSortFields = max(0, min(cfg.MaxSortFields, maxSortFields))
	return cfg
}

func (p *plan) matches(docID uint32) bool {
	for _, pred := range p.predicates {
		if !pred(docID) {
			return false
		}
	}
	return true
}

func (e *Executor) observe(scanned, filtered, rejected int, result *SearchResult, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	resultType := "hit"
	if result.Found == 0 {
		resultType = "zero_result"
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	e.metrics.SearchLatency.WithLabelValues("none").Observe(elapsed.Seconds())
	e.metrics.SearchResultsCount.Observe(float64(len(result.Hits)))
	e.metrics.CandidatesScanned.Add(float64(scanned))
	e.metrics.CandidatesFiltered.Add(float64(filtered))
	e.metrics.TopsterRejectedTotal.Add(float64(rejected))
}

func (e *Executor) observeFacetSize(field string, distinct int) {
	if e.metrics == nil {
		return
	}
	e.metrics.FacetValuesDistinct.WithLabelValues(field).Set(float64(distinct))
}

func (e *Executor) recordError(err error) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
	e.metrics.FilterErrorsTotal.WithLabelValues(errorKind(err)).Inc()
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidComparator):
		return "invalid_comparator"
	case errors.Is(err, apperrors.ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
