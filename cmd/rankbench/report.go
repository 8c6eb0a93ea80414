package main

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-core/internal/indexer/facet"
	"github.com/Adithya-Monish-Kumar-K/search-core/internal/searcher/executor"
)

type Stats struct {
	latencies []time.Duration
	found     int
	returned  int
	cacheHits int
	last      *executor.SearchResult
}

func NewStats() *Stats {
	return &Stats{latencies: make([]time.Duration, 0, 1024)}
}

func (s *Stats) Record(d time.Duration, res *executor.SearchResult, cacheHit bool) {
	s.latencies = append(s.latencies, d)
	s.found += res.Found
	s.returned += len(res.Hits)
	if cacheHit {
		s.cacheHits++
	}
	s.last = res
}

func printReport(s *Stats, facetSize int) {
	n := len(s.latencies)
	fmt.Println("=== Results ===")
	fmt.Printf("Queries:         %d\n", n)
	fmt.Printf("Cache hits:      %d\n", s.cacheHits)
	if n == 0 {
		return
	}
	fmt.Printf("Avg found:       %.1f\n", float64(s.found)/float64(n))
	fmt.Printf("Avg returned:    %.1f\n", float64(s.returned)/float64(n))

	latencies := make([]time.Duration, n)
	copy(latencies, s.latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	fmt.Println()
	fmt.Println("=== Latency ===")
	fmt.Printf("Min:    %s\n", latencies[0])
	fmt.Printf("Avg:    %s\n", sum/time.Duration(n))
	fmt.Printf("P50:    %s\n", percentile(latencies, 50))
	fmt.Printf("P90:    %s\n", percentile(latencies, 90))
	fmt.Printf("P99:    %s\n", percentile(latencies, 99))
	fmt.Printf("Max:    %s\n", latencies[n-1])

	if s.last == nil {
		return
	}
	fmt.Println()
	fmt.Println("=== Last query ===")
	for i, h := range s.last.Hits {
		fmt.Printf("  %2d. doc=%-8d score=%-8d tb1=%d tb2=%d\n", i+1, h.DocID, h.Score, h.Tiebreak1, h.Tiebreak2)
	}
	for _, f := range s.last.Facets {
		printFacet(f, facetSize)
	}
}

func printFacet(f facet.Facet, size int) {
	fmt.Printf("  facet %s:\n", f.FieldName)
	for _, vc := range f.Top(size) {
		fmt.Printf("    %-12s %d\n", vc.Value, vc.Count)
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}
