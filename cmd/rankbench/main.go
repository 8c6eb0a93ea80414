package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/search-core/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-core/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-core/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-core/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/search-core/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults are used when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	checker := health.NewChecker()
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(m, cfg.Metrics.Port, checker.ReadyHandler())
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(ctx)
		}()
	}

	coll, err := buildCollection(cfg.Bench, m)
	if err != nil {
		slog.Error("failed to build collection", "error", err)
		os.Exit(1)
	}
	checker.Register("collection", func(context.Context) health.ComponentHealth {
		if n := coll.Count(); n > 0 {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d documents", n)}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "no documents indexed"}
	})

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		var redisClient *pkgredis.Client
		err := resilience.Retry(ctx, "redis-connect", cfg.Redis.Connect, func(context.Context) error {
			var err error
			redisClient, err = pkgredis.NewClient(cfg.Redis)
			return err
		})
		if err != nil {
			slog.Warn("redis unavailable, result caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis, m)
			if err := queryCache.Invalidate(ctx); err != nil {
				slog.Warn("stale cache entries left in place", "error", err)
			}
			checker.Register("result_cache", func(ctx context.Context) health.ComponentHealth {
				if err := redisClient.Ping(ctx); err != nil {
					return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
				}
				return health.ComponentHealth{Status: health.StatusUp}
			})
			slog.Info("result cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	exec := executor.New(coll, cfg.Search, m)
	q := executor.Query{
		Filters: cfg.Bench.Filters,
		SortBy:  cfg.Bench.SortBy,
		FacetBy: cfg.Bench.FacetBy,
		Limit:   cfg.Search.DefaultLimit,
	}

	fmt.Println("=== Ranking Core Benchmark ===")
	fmt.Printf("Documents:   %d\n", coll.Count())
	fmt.Printf("Candidates:  %d per query\n", cfg.Bench.Candidates)
	fmt.Printf("Queries:     %d\n", cfg.Bench.Queries)
	fmt.Printf("Filters:     %v\n", q.Filters)
	fmt.Printf("Sort by:     %v\n", q.SortBy)
	fmt.Printf("Facet by:    %v\n", q.FacetBy)
	fmt.Println()

	stats, err := run(ctx, exec, queryCache, q, cfg.Bench)
	if err != nil {
		slog.Error("benchmark aborted",
			"error", apperrors.Message(err),
			"status", apperrors.HTTPStatusCode(err),
		)
		os.Exit(1)
	}
	printReport(stats, cfg.Search.MaxFacetSize)
}

func run(ctx context.Context, exec *executor.Executor, qc *cache.QueryCache, q executor.Query, cfg config.BenchConfig) (*Stats, error) {
	w := newWorkload(cfg.Seed + 1)
	stats := NewStats()
	for i := range cfg.Queries {
		candidates := w.candidates(cfg.Documents, cfg.Candidates)
		id := fmt.Sprintf("bench-%d", i)
		qctx, span := tracing.StartSpan(logger.WithQueryID(ctx, id), "rankbench.query", id)

		start := time.Now()
		var (
			res *executor.SearchResult
			hit bool
			err error
		)
		if qc != nil {
			res, hit, err = qc.GetOrCompute(qctx, q, candidates, func(ctx context.Context) (*executor.SearchResult, error) {
				return exec.Execute(ctx, q, candidates)
			})
		} else {
			res, err = exec.Execute(qctx, q, candidates)
		}
		span.End()
		if err != nil {
			return nil, err
		}
		span.SetAttr("cache_hit", hit)
		span.Log(logger.FromContext(qctx, nil))
		stats.Record(time.Since(start), res, hit)
	}
	return stats, nil
}
