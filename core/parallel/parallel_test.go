package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestParallelizeCoversEveryIndexOnce(t *testing.T) {
	for _, items := range []int{0, 1, 7, 1000, 4099} {
		hits := make([]int32, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("items=%d: index %d visited %d times", items, i, h)
			}
		}
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls++
		if start != 0 || end != 10 {
			t.Errorf("range = [%d, %d), want [0, 10)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("expected a single sequential call, got %d", calls)
	}
}

func TestForEachChunk(t *testing.T) {
	out := make([]int, 103)
	err := ForEachChunk(context.Background(), len(out), 10, 4, func(_ context.Context, start, end int) error {
		for i := start; i < end; i++ {
			out[i] = i * 2
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachChunk: %v", err)
	}
	for i, v := range out {
		if v != i*2 {
			t.Fatalf("out[%d] = %d", i, v)
		}
	}
}

func TestForEachChunkFirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	var ran int32
	err := ForEachChunk(context.Background(), 1000, 1, 1, func(ctx context.Context, start, end int) error {
		atomic.AddInt32(&ran, 1)
		if start == 3 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if atomic.LoadInt32(&ran) == 1000 {
		t.Error("remaining chunks should be skipped after the first error")
	}
}

func TestForEachChunkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ForEachChunk(ctx, 10, 1, 2, func(context.Context, int, int) error {
		t.Error("fn must not run on a cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
