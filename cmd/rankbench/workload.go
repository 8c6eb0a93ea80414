package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-core/internal/indexer/collection"
	"github.com/Adithya-Monish-Kumar-K/search-core/internal/schema"
	"github.com/Adithya-Monish-Kumar-K/search-core/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/metrics"
)

var (
	benchTags   = []string{"red", "blue", "green", "shoes", "shirt", "sale", "new", "outdoor"}
	benchBrands = []string{"acme", "zen", "northwind", "contoso", "globex"}
)

func benchSchema() (*schema.Schema, error) {
	return schema.New(
		schema.NewField("title", schema.TypeString, false),
		schema.NewField("points", schema.TypeInt32, false),
		schema.NewField("year", schema.TypeInt64, false),
		schema.NewField("ratings", schema.TypeInt32Array, false),
		schema.NewField("price", schema.TypeFloat, false),
		schema.NewField("in_stock", schema.TypeBool, true),
		schema.NewField("tags", schema.TypeStringArray, true),
		schema.NewField("brand", schema.TypeString, true),
	)
}

type workload struct {
	rng *rand.Rand
}

func newWorkload(seed int64) *workload {
	return &workload{rng: rand.New(rand.NewPCG(uint64(seed), 0))}
}

func (w *workload) document(id uint32) collection.Document {
	nTags := 1 + w.rng.IntN(3)
	tags := make([]string, nTags)
	for i := range tags {
		tags[i] = benchTags[w.rng.IntN(len(benchTags))]
	}
	ratings := make([]int32, w.rng.IntN(4))
	for i := range ratings {
		ratings[i] = int32(1 + w.rng.IntN(5))
	}
	fields := map[string]any{
		"title":    fmt.Sprintf("product %d", id),
		"year":     int64(1990 + w.rng.IntN(35)),
		"ratings":  ratings,
		"price":    float64(w.rng.IntN(100000)) / 100,
		"in_stock": w.rng.IntN(4) != 0,
		"tags":     tags,
		"brand":    benchBrands[w.rng.IntN(len(benchBrands))],
	}
	// A tenth of the documents carry no points so missing sort values are
	// exercised.
	if w.rng.IntN(10) != 0 {
		fields["points"] = int32(w.rng.IntN(100))
	}
	return collection.Document{ID: id, Fields: fields}
}

// candidates draws n distinct doc ids out of docs with random match scores.
func (w *workload) candidates(docs, n int) []executor.Candidate {
	if n > docs {
		n = docs
	}
	out := make([]executor.Candidate, 0, n)
	for _, i := range w.rng.Perm(docs)[:n] {
		out = append(out, executor.Candidate{
			DocID: uint32(i),
			Score: w.rng.Uint64N(1 << 20),
		})
	}
	return out
}

func buildCollection(cfg config.BenchConfig, m *metrics.Metrics) (*collection.Collection, error) {
	s, err := benchSchema()
	if err != nil {
		return nil, err
	}
	coll := collection.New("bench", s)
	w := newWorkload(cfg.Seed)

	start := time.Now()
	for i := range cfg.Documents {
		if err := coll.Index(w.document(uint32(i))); err != nil {
			return nil, fmt.Errorf("indexing document %d: %w", i, err)
		}
		m.DocsIndexedTotal.Inc()
	}
	slog.Info("synthetic collection built",
		"documents", coll.Count(),
		"elapsed", time.Since(start),
	)
	return coll, nil
}
