// Package cache memoises ranking results in an external key-value store.
// Keys are derived from the normalised query and the candidate set, so the
// same query over different candidates never collides.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/search-core/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-core/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/resilience"
)

const keyPrefix = "rank:"

// Store is the byte store behind the cache. *redis.Client implements it;
// Get must return redis.ErrCacheMiss for absent keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// QueryCache calls the store through a circuit breaker: while the store is
// failing, lookups are misses and writes are dropped without a round trip.
type QueryCache struct {
	store   Store
	ttl     time.Duration
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a QueryCache. m may be nil.
func New(store Store, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:   store,
		ttl:     cfg.CacheTTL,
		breaker: resilience.NewCircuitBreaker("result-cache", cfg.Breaker),
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, key string) (*executor.SearchResult, bool) {
	var data []byte
	found := false
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.store.Get(ctx, key)
		switch {
		case errors.Is(err, pkgredis.ErrCacheMiss):
			return nil
		case err != nil:
			return err
		}
		found = true
		return nil
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache get failed", "key", key, "error", err)
	}
	if !found {
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hit()
	c.logger.Debug("cache hit", "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, key string, result *executor.SearchResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for (q, candidates) or runs
// computeFn once per key, even under concurrent callers. The bool reports a
// cache hit. Errors from computeFn are returned and never cached.
//
// computeFn receives a context detached from the caller's cancellation, so
// one caller giving up does not fail the others waiting on the same key. A
// cancelled caller stops waiting and returns its own ctx.Err().
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	q executor.Query,
	candidates []executor.Candidate,
	computeFn func(ctx context.Context) (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	key := BuildKey(q, candidates)
	if result, ok := c.Get(ctx, key); ok {
		return result, true, nil
	}
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		result, err := computeFn(shared)
		if err != nil {
			return nil, err
		}
		c.Set(shared, key, result)
		return result, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, false, r.Err
		}
		return r.Val.(*executor.SearchResult), false, nil
	}
}

// Invalidate drops every cached result, typically after new documents are
// indexed.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// BuildKey hashes the normalised query together with the candidate list.
// Filter and facet order do not change the result and are sorted; sort field
// order does and is kept.
func BuildKey(q executor.Query, candidates []executor.Candidate) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|limit=%d|",
		normalizeList(q.Filters, true),
		normalizeList(q.SortBy, false),
		normalizeList(q.FacetBy, true),
		q.Limit,
	)
	var buf [12]byte
	for _, c := range candidates {
		binary.LittleEndian.PutUint32(buf[:4], c.DocID)
		binary.LittleEndian.PutUint64(buf[4:], c.Score)
		h.Write(buf[:])
	}
	return fmt.Sprintf("%s%x", keyPrefix, h.Sum(nil)[:16])
}

func normalizeList(items []string, sorted bool) string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if sorted {
		sort.Strings(out)
	}
	return strings.Join(out, ",")
}
