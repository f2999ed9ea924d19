package systems

import (
	"context"
	"runtime"
	"sync"
)

// parallelThreshold is the minimum item count to fan out to the pool.
// Below this, running inline is faster than waking the workers.
const parallelThreshold = 64

// DefaultBatchSize is the number of items a worker processes per batch.
const DefaultBatchSize = 4096

// Kernel processes the half-open item range [start, end). Kernels running in
// the same dispatch must not read each other's in-flight writes.
type Kernel func(start, end int)

// batch is a range of items handed to one worker.
type batch struct {
	start, end int
	kernel     Kernel
	done       *sync.WaitGroup
}

// Dispatcher is a pool of persistent worker goroutines. Each Dispatch call is
// a barrier: it returns only after every batch it issued has finished.
type Dispatcher struct {
	numWorkers int
	batchSize  int

	workChan chan batch    // sends work to workers
	stopChan chan struct{} // signals workers to exit
	wg       sync.WaitGroup
	running  bool
}

// NewDispatcher creates a dispatcher. workers <= 0 uses GOMAXPROCS and
// batchSize <= 0 uses DefaultBatchSize. Workers start lazily.
func NewDispatcher(workers, batchSize int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Dispatcher{
		numWorkers: workers,
		batchSize:  batchSize,
	}
}

// Workers returns the pool size.
func (d *Dispatcher) Workers() int { return d.numWorkers }

// BatchSize returns the number of items per batch.
func (d *Dispatcher) BatchSize() int { return d.batchSize }

// start launches the worker goroutines.
func (d *Dispatcher) start() {
	if d.running {
		return
	}

	d.workChan = make(chan batch, d.numWorkers)
	d.stopChan = make(chan struct{})
	d.running = true

	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Stop signals all workers to exit and waits for them.
func (d *Dispatcher) Stop() {
	if !d.running {
		return
	}

	close(d.stopChan)
	d.wg.Wait()
	d.running = false
}

// worker runs in a goroutine, processing batches until stopped.
func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.stopChan:
			return
		case b := <-d.workChan:
			b.kernel(b.start, b.end)
			b.done.Done()
		}
	}
}

// Dispatch runs kernel over n items and blocks until all issued batches have
// completed. If ctx is cancelled, no further batches are issued; the ones
// already in flight are awaited and ctx.Err() is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, n int, kernel Kernel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}

	if n < parallelThreshold || d.numWorkers == 1 {
		kernel(0, n)
		return ctx.Err()
	}

	if !d.running {
		d.start()
	}

	var pending sync.WaitGroup
	var err error

issue:
	for start := 0; start < n; start += d.batchSize {
		end := min(start+d.batchSize, n)
		pending.Add(1)
		select {
		case d.workChan <- batch{start: start, end: end, kernel: kernel, done: &pending}:
		case <-ctx.Done():
			pending.Done()
			err = ctx.Err()
			break issue
		}
	}

	pending.Wait()
	return err
}
