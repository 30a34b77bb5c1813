// Package parallel provides CPU fan-out helpers used by the explainer for
// per-sample work (z-scoring, distances, predictor calls).
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Parallelize divides items into one contiguous range per CPU core and runs fn
// on each range concurrently. fn must only write to indices inside its range.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold.
// Below the threshold fn runs once, sequentially, over [0, items).
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}

// ForEachChunk splits [0, items) into chunks of chunkSize and runs fn on them
// with at most limit goroutines in flight (limit <= 0 means GOMAXPROCS).
//
// The first error cancels the context handed to the remaining chunks and is
// returned. Chunks not yet started when ctx is done are skipped and ctx.Err()
// is returned.
func ForEachChunk(ctx context.Context, items, chunkSize, limit int, fn func(ctx context.Context, start, end int) error) error {
	if items <= 0 {
		return ctx.Err()
	}
	if chunkSize <= 0 {
		chunkSize = 1
	}
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		if gctx.Err() != nil {
			break
		}
		s, e := start, end
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, s, e)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
