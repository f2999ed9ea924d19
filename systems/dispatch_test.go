package systems

import (
	"context"
	"sync/atomic"
	"testing"
)

func TestDispatchCoversEveryItemOnce(t *testing.T) {
	tests := []struct {
		name      string
		workers   int
		batchSize int
		n         int
	}{
		{"inline small", 4, 16, 10},
		{"single worker", 1, 16, 1000},
		{"exact batches", 4, 100, 1000},
		{"ragged tail", 3, 64, 1001},
		{"more batches than workers", 2, 8, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(tt.workers, tt.batchSize)
			defer d.Stop()

			hits := make([]atomic.Int32, tt.n)
			err := d.Dispatch(context.Background(), tt.n, func(start, end int) {
				for i := start; i < end; i++ {
					hits[i].Add(1)
				}
			})
			if err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			for i := range hits {
				if got := hits[i].Load(); got != 1 {
					t.Fatalf("item %d processed %d times", i, got)
				}
			}
		})
	}
}

func TestDispatchReusesWorkers(t *testing.T) {
	d := NewDispatcher(4, 32)
	defer d.Stop()

	var total atomic.Int64
	for round := 0; round < 20; round++ {
		err := d.Dispatch(context.Background(), 500, func(start, end int) {
			total.Add(int64(end - start))
		})
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
	}
	if total.Load() != 20*500 {
		t.Errorf("total = %d, want %d", total.Load(), 20*500)
	}
}

func TestDispatchCancelStopsIssuing(t *testing.T) {
	d := NewDispatcher(2, 8)
	defer d.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	var processed atomic.Int64
	err := d.Dispatch(ctx, 100000, func(start, end int) {
		if processed.Add(int64(end-start)) > 64 {
			cancel()
		}
	})

	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if processed.Load() >= 100000 {
		t.Errorf("processed all %d items despite cancellation", processed.Load())
	}
}

func TestDispatcherStopRestart(t *testing.T) {
	d := NewDispatcher(3, 16)
	run := func() int64 {
		var n atomic.Int64
		if err := d.Dispatch(context.Background(), 300, func(start, end int) {
			n.Add(int64(end - start))
		}); err != nil {
			t.Fatal(err)
		}
		return n.Load()
	}

	if got := run(); got != 300 {
		t.Fatalf("first run = %d", got)
	}
	d.Stop()
	if got := run(); got != 300 {
		t.Fatalf("after restart = %d", got)
	}
	d.Stop()
}
