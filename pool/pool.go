// Package pool runs simulation jobs on a fixed set of workers. Each worker
// owns an independent Mersenne Twister generator, so jobs never contend on a
// shared random source and never observe correlated sequences.
package pool

import (
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/seehuhn/mt19937"
)

// Job is one unit of simulation work. The generator belongs to the worker
// executing the job and must not escape the call.
type Job func(rng *rand.Rand)

// Handle resolves when its job has finished running.
type Handle <-chan struct{}

// Wait blocks until the job completes.
func (h Handle) Wait() { <-h }

// Pool dispatches jobs to a fixed number of workers. Submit never blocks on
// job execution; AwaitAll provides the completion barrier.
type Pool struct {
	jobs    chan task
	size    int
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

type task struct {
	job  Job
	done chan struct{}
}

// New starts a pool with the given worker count. A count of zero or less
// falls back to the hardware concurrency.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		jobs: make(chan task, size),
		size: size,
	}
	seed := time.Now().UnixNano()
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(seed + int64(i))
	}
	return p
}

// Size returns the worker count.
func (p *Pool) Size() int { return p.size }

func (p *Pool) worker(seed int64) {
	defer p.wg.Done()

	src := mt19937.New()
	src.Seed(seed)
	rng := rand.New(src)

	for t := range p.jobs {
		t.job(rng)
		close(t.done)
	}
}

// Submit enqueues a job and returns a handle that resolves on completion.
// Submitting to a closed pool panics.
func (p *Pool) Submit(job Job) Handle {
	done := make(chan struct{})
	p.jobs <- task{job: job, done: done}
	return done
}

// AwaitAll blocks until every handle's job has finished.
func AwaitAll(handles []Handle) {
	for _, h := range handles {
		h.Wait()
	}
}

// Close stops the workers after draining queued jobs. Close is idempotent.
func (p *Pool) Close() {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.jobs)
	p.wg.Wait()
}
