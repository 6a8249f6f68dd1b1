package externals

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/semaphore"

	"github.com/pageza/smartscheduler/internal/config"
	"github.com/pageza/smartscheduler/internal/domain"
)

// PairKey identifies one (origin index, destination index) cell in an ETA
// matrix response.
type PairKey struct {
	Origin int
	Dest   int
}

// MatrixBatcher is the raw provider call a single batch of up to
// config.ETAMatrixBatchSize pairs makes. Implementations call the upstream
// batch-ETA endpoint (OpenRouteService Matrix API or equivalent).
type MatrixBatcher interface {
	ETABatch(ctx context.Context, origins, dests []domain.GeoLocation) (map[PairKey]float64, error)
}

// ETAMatrix implements ETAMatrix.ETAs, batching origin×destination pairs at
// config.ETAMatrixBatchSize per call, capped at config.ETAMatrixMaxBatches
// concurrent batches via a weighted semaphore, and caching results in Redis
// keyed by a rounded origin/destination grid with a 15-minute TTL.
type ETAMatrix struct {
	batcher   MatrixBatcher
	redis     *redis.Client
	sem       *semaphore.Weighted
	batchSize int
	cacheTTL  time.Duration
}

// NewETAMatrix wires a MatrixBatcher behind the batching/caching/concurrency
// policy.
func NewETAMatrix(batcher MatrixBatcher, redisClient *redis.Client, cfg *config.Config) *ETAMatrix {
	return &ETAMatrix{
		batcher:   batcher,
		redis:     redisClient,
		sem:       semaphore.NewWeighted(int64(cfg.ETAMatrixMaxBatches)),
		batchSize: cfg.ETAMatrixBatchSize,
		cacheTTL:  cfg.ETAMatrixCacheTTL,
	}
}

// ETAs returns a (possibly partial) origin×destination minutes map. Cache
// hits short-circuit the upstream call entirely; misses are batched
// concurrently (bounded by the semaphore) and the results are written back
// to the cache. The returned map is never nil and the error is always nil: a
// batch that fails upstream leaves its pairs absent from the map, and callers
// fall back to a per-pair ETA for any missing pair.
func (m *ETAMatrix) ETAs(ctx context.Context, origins, dests []domain.GeoLocation) (map[PairKey]float64, error) {
	result := make(map[PairKey]float64, len(origins)*len(dests))

	type cell struct {
		oi, di int
		key    string
	}
	var misses []cell

	for oi, o := range origins {
		for di, d := range dests {
			key := gridCacheKey(o, d)
			if m.redis != nil {
				if cached, err := m.redis.Get(ctx, key).Result(); err == nil {
					var minutes float64
					if json.Unmarshal([]byte(cached), &minutes) == nil {
						result[PairKey{Origin: oi, Dest: di}] = minutes
						continue
					}
				}
			}
			misses = append(misses, cell{oi: oi, di: di, key: key})
		}
	}

	if len(misses) == 0 {
		return result, nil
	}

	batches := chunkMisses(misses, m.batchSize)
	errCh := make(chan error, len(batches))
	resultsCh := make(chan map[PairKey]float64, len(batches))

	for _, batch := range batches {
		batch := batch
		if err := m.sem.Acquire(ctx, 1); err != nil {
			errCh <- err
			continue
		}
		go func() {
			defer m.sem.Release(1)

			batchOrigins := make([]domain.GeoLocation, 0, len(batch))
			batchDests := make([]domain.GeoLocation, 0, len(batch))
			seenO := map[int]int{}
			seenD := map[int]int{}
			for _, c := range batch {
				if _, ok := seenO[c.oi]; !ok {
					seenO[c.oi] = len(batchOrigins)
					batchOrigins = append(batchOrigins, origins[c.oi])
				}
				if _, ok := seenD[c.di]; !ok {
					seenD[c.di] = len(batchDests)
					batchDests = append(batchDests, dests[c.di])
				}
			}

			raw, err := m.batcher.ETABatch(ctx, batchOrigins, batchDests)
			if err != nil {
				errCh <- err
				return
			}

			out := make(map[PairKey]float64, len(batch))
			for _, c := range batch {
				if minutes, ok := raw[PairKey{Origin: seenO[c.oi], Dest: seenD[c.di]}]; ok {
					out[PairKey{Origin: c.oi, Dest: c.di}] = minutes
					if m.redis != nil {
						if payload, merr := json.Marshal(minutes); merr == nil {
							m.redis.Set(ctx, c.key, payload, m.cacheTTL)
						}
					}
				}
			}
			resultsCh <- out
		}()
	}

	for range batches {
		select {
		case err := <-errCh:
			_ = err // a degraded batch just leaves its pairs absent from result
		case out := <-resultsCh:
			for k, v := range out {
				result[k] = v
			}
		}
	}

	return result, nil
}

func chunkMisses[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}

// gridCacheKey rounds both endpoints to a coarse grid (roughly 100m) so
// near-identical lookups share a cache entry.
func gridCacheKey(o, d domain.GeoLocation) string {
	round := func(v float64) float64 { return math.Round(v*1000) / 1000 }
	return fmt.Sprintf("etamatrix:%.3f,%.3f->%.3f,%.3f", round(o.Latitude), round(o.Longitude), round(d.Latitude), round(d.Longitude))
}
