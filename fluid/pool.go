package fluid

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum element count to use the worker pool.
// Below this, running inline is faster than the channel round trip.
const parallelThreshold = 256

// KernelFunc processes elements [start, end). worker identifies the
// goroutine running the chunk so callers can index per-worker scratch.
type KernelFunc func(start, end, worker int)

// workChunk represents a range of elements for a worker to process.
type workChunk struct {
	start, end int
	fn         KernelFunc
}

// Pool runs data-parallel passes on persistent worker goroutines.
// Run returns only after every chunk has completed, so consecutive Run
// calls are separated by a full barrier.
type Pool struct {
	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

// NewPool creates a pool with the given worker count (0 = GOMAXPROCS).
// Workers start lazily on the first parallel Run.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{numWorkers: workers}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.numWorkers }

func (p *Pool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop signals all workers to exit and waits for them.
func (p *Pool) Stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *Pool) worker(workerID int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end, workerID)
			p.doneChan <- struct{}{}
		}
	}
}

// Run splits [0, n) into one chunk per worker and blocks until all are done.
func (p *Pool) Run(n int, fn KernelFunc) {
	if n <= 0 {
		return
	}
	if n < parallelThreshold || p.numWorkers == 1 {
		fn(0, n, 0)
		return
	}

	if !p.running {
		p.start()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end, fn: fn}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}
