package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-core/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-core/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/resilience"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, s.failGet
	}
	v, ok := s.data[key]
	if !ok {
		return nil, pkgredis.ErrCacheMiss
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *memStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

var (
	testCfg        = config.RedisConfig{CacheTTL: time.Minute}
	testQuery      = executor.Query{Filters: []string{"points:>10"}, SortBy: []string{"points:DESC"}, Limit: 5}
	testCandidates = []executor.Candidate{{DocID: 1, Score: 3}, {DocID: 2, Score: 7}}
	testResult     = &executor.SearchResult{Found: 1, Hits: []executor.Hit{{DocID: 2, Score: 7, Tiebreak1: 40}}}
)

func TestGetOrComputeCachesResult(t *testing.T) {
	store := newMemStore()
	c := New(store, testCfg, nil)
	calls := 0
	compute := func(context.Context) (*executor.SearchResult, error) {
		calls++
		return testResult, nil
	}

	first, hit, err := c.GetOrCompute(context.Background(), testQuery, testCandidates, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, testResult, first)

	second, hit, err := c.GetOrCompute(context.Background(), testQuery, testCandidates, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, testResult, second)
	assert.Equal(t, 1, calls)

	for _, ttl := range store.ttls {
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	c := New(newMemStore(), testCfg, nil)
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute(context.Background(), testQuery, testCandidates, func(context.Context) (*executor.SearchResult, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	res, hit, err := c.GetOrCompute(context.Background(), testQuery, testCandidates, func(context.Context) (*executor.SearchResult, error) {
		return testResult, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, testResult, res)
}

func TestGetOrComputeCollapsesConcurrentCallers(t *testing.T) {
	c := New(newMemStore(), testCfg, nil)
	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) (*executor.SearchResult, error) {
		calls.Add(1)
		<-release
		return testResult, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, _, err := c.GetOrCompute(context.Background(), testQuery, testCandidates, compute)
			assert.NoError(t, err)
			assert.Equal(t, testResult, res)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrComputeSurvivesLeaderCancel(t *testing.T) {
	c := New(newMemStore(), testCfg, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	var computeErr error
	compute := func(ctx context.Context) (*executor.SearchResult, error) {
		close(started)
		<-release
		computeErr = ctx.Err()
		return testResult, nil
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		_, _, err := c.GetOrCompute(leaderCtx, testQuery, testCandidates, compute)
		leaderDone <- err
	}()
	<-started

	followerDone := make(chan *executor.SearchResult, 1)
	go func() {
		res, _, err := c.GetOrCompute(context.Background(), testQuery, testCandidates, compute)
		assert.NoError(t, err)
		followerDone <- res
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-leaderDone, context.Canceled)

	close(release)
	assert.Equal(t, testResult, <-followerDone)
	assert.NoError(t, computeErr)
}

func TestStoreFailureIsAMiss(t *testing.T) {
	store := newMemStore()
	store.failGet = errors.New("connection refused")
	c := New(store, testCfg, nil)

	res, ok := c.Get(context.Background(), "rank:abc")
	assert.False(t, ok)
	assert.Nil(t, res)
}

func TestBuildKey(t *testing.T) {
	base := BuildKey(testQuery, testCandidates)
	assert.True(t, strings.HasPrefix(base, keyPrefix))

	reordered := executor.Query{
		Filters: []string{"in_stock:true", " points:>10"},
		FacetBy: []string{"tags", "brand"},
		Limit:   5,
	}
	same := executor.Query{
		Filters: []string{"points:>10", "in_stock:true"},
		FacetBy: []string{"brand", "tags"},
		Limit:   5,
	}
	assert.Equal(t, BuildKey(reordered, testCandidates), BuildKey(same, testCandidates))

	swappedSort := testQuery
	swappedSort.SortBy = []string{"points:ASC"}
	assert.NotEqual(t, base, BuildKey(swappedSort, testCandidates))

	otherLimit := testQuery
	otherLimit.Limit = 6
	assert.NotEqual(t, base, BuildKey(otherLimit, testCandidates))

	assert.NotEqual(t, base, BuildKey(testQuery, testCandidates[:1]))
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	store.data["other:key"] = []byte("x")
	c := New(store, testCfg, nil)
	c.Set(context.Background(), BuildKey(testQuery, testCandidates), testResult)

	require.NoError(t, c.Invalidate(context.Background()))
	assert.Len(t, store.data, 1)
	assert.Contains(t, store.data, "other:key")
}

func TestFailingStoreTripsBreaker(t *testing.T) {
	store := newMemStore()
	store.failGet = errors.New("connection refused")
	cfg := testCfg
	cfg.Breaker = resilience.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour}
	c := New(store, cfg, nil)

	for range 2 {
		_, ok := c.Get(context.Background(), "rank:abc")
		assert.False(t, ok)
	}
	assert.Equal(t, resilience.StateOpen, c.breaker.State())

	store.failGet = nil
	store.data["rank:abc"] = []byte(`{"found":1,"hits":[]}`)
	_, ok := c.Get(context.Background(), "rank:abc")
	assert.False(t, ok, "open circuit skips the store")
}

func TestMissesDoNotTripBreaker(t *testing.T) {
	cfg := testCfg
	cfg.Breaker = resilience.CircuitBreakerConfig{FailureThreshold: 1}
	c := New(newMemStore(), cfg, nil)

	for range 3 {
		_, ok := c.Get(context.Background(), "rank:missing")
		assert.False(t, ok)
	}
	assert.Equal(t, resilience.StateClosed, c.breaker.State())
}
