// Command bench runs a synthetic texture-atlas workload against the tracking
// engine and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/lrutrack/cache"
	"github.com/IvanBrykalov/lrutrack/internal/util"
	"github.com/IvanBrykalov/lrutrack/internal/workload"
	pmet "github.com/IvanBrykalov/lrutrack/metrics/prom"
	"github.com/IvanBrykalov/lrutrack/policy/budget"
)

// tile is the cached value: one atlas region.
type tile struct {
	key   int
	bytes int64
}

// counters are updated by all workers.
type counters struct {
	ops, hits, misses, pushes, replaces, removes, evicted util.Counter
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	prof := workload.Default()
	if cfg.Profile != "" {
		if prof, err = workload.Load(cfg.Profile); err != nil {
			return err
		}
	}

	// ---- pprof server (on DefaultServeMux) ----
	if cfg.PprofAddr != "" {
		go func() {
			log.Info("pprof: serving", slog.String("addr", cfg.PprofAddr))
			log.Error("pprof: stopped", slog.Any("err", http.ListenAndServe(cfg.PprofAddr, nil)))
		}()
	}

	// ---- Prometheus metrics (own registry and mux) ----
	reg := prometheus.NewRegistry()
	metrics := pmet.New(reg, "lrutrack", "bench", nil)
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("metrics: serving", slog.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics: stopped", slog.Any("err", err))
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	// ---- Build engine and eviction policy ----
	atlas := cache.NewLocked[tile](cache.Options{
		Partitions: len(prof.Partitions),
		Metrics:    metrics,
	})
	var (
		resident int64 // guarded by atlas
		stats    counters
	)
	pol := budget.New(budget.Options[tile]{
		Cost:  func(t tile) int64 { return t.bytes },
		Order: prof.Order(),
		OnEvict: func(_ uint8, t tile) {
			resident -= t.bytes
			stats.evicted.Add(1)
		},
		Logger: log,
	})

	log.Info("starting",
		slog.Int("partitions", len(prof.Partitions)),
		slog.Int64("capacity_bytes", prof.CapacityBytes),
		slog.Int("keys", prof.Keys),
		slog.Int("workers", cfg.Workers),
		slog.Duration("duration", cfg.Duration),
		slog.Int64("seed", cfg.Seed))

	// ---- Load generation ----
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	start := time.Now()
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			// Each worker owns a disjoint stride of keys and their handles.
			r := rand.New(rand.NewSource(cfg.Seed + int64(w)*9973))
			handles := make([]cache.Handle[tile], (prof.Keys+cfg.Workers-1)/cfg.Workers)

			for ctx.Err() == nil {
				slot := r.Intn(len(handles))
				part := prof.PickPartition(r)
				op := prof.PickOp(r)
				t := tile{key: slot*cfg.Workers + w, bytes: prof.Partitions[part].TileBytes}
				stats.ops.Add(1)

				atlas.Do(func(c *cache.Cache[tile]) {
					h := &handles[slot]
					switch op {
					case workload.OpTouch:
						if _, ok := c.Touch(*h); ok {
							stats.hits.Add(1)
							return
						}
						stats.misses.Add(1)
						*h = c.PushNew(part, t)
						resident += t.bytes
					case workload.OpReplace:
						old, ok := c.ReplaceOrInsert(h, part, t)
						if ok {
							resident -= old.bytes
						}
						resident += t.bytes
						stats.replaces.Add(1)
					case workload.OpPush:
						if old, ok := c.Remove(*h); ok {
							resident -= old.bytes
						}
						*h = c.PushNew(part, t)
						resident += t.bytes
						stats.pushes.Add(1)
					case workload.OpRemove:
						if old, ok := c.Remove(*h); ok {
							resident -= old.bytes
							stats.removes.Add(1)
						}
					}
					if over := resident - prof.CapacityBytes; over > 0 {
						pol.Reclaim(c, over)
					}
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	// ---- Report ----
	var residentBytes int64
	atlas.Do(func(c *cache.Cache[tile]) {
		residentBytes = resident
		if err = c.Validate(); err != nil {
			err = fmt.Errorf("engine inconsistent after run: %w", err)
		}
	})
	if err != nil {
		return err
	}

	ops := stats.ops.Load()
	hits, misses := stats.hits.Load(), stats.misses.Load()
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}
	log.Info("done",
		slog.Duration("elapsed", elapsed),
		slog.Uint64("ops", ops),
		slog.Float64("ops_per_sec", float64(ops)/elapsed.Seconds()),
		slog.Uint64("hits", hits),
		slog.Uint64("misses", misses),
		slog.String("hit_rate", fmt.Sprintf("%.2f%%", hitRate)),
		slog.Uint64("pushes", stats.pushes.Load()),
		slog.Uint64("replaces", stats.replaces.Load()),
		slog.Uint64("removes", stats.removes.Load()),
		slog.Uint64("evicted", stats.evicted.Load()),
		slog.Int("resident_entries", atlas.Len()),
		slog.Int64("resident_bytes", residentBytes))
	return nil
}
