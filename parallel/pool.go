// Package parallel runs per-file jobs for the CLI commands.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

// Pool hands jobs to a fixed set of goroutines. With a single worker jobs run
// inline on the caller.
type Pool struct {
	Do     WorkerFunc
	Wait   WaitFunc
	Cancel CancelFunc

	wg      sync.WaitGroup
	workers int
	ran     atomic.Uint64
}

// Start spawns numWorkers goroutines, GOMAXPROCS of them when numWorkers < 1.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{workers: numWorkers}
	pool.Do = func(f func()) {
		f()
		pool.ran.Add(1)
	}
	pool.Wait = func(bool) {}
	pool.Cancel = func() {}

	if numWorkers == 1 {
		return pool
	}

	jobs := make(chan func(), numWorkers)
	for range numWorkers {
		pool.wg.Go(func() {
			for f := range jobs {
				f()
				pool.ran.Add(1)
			}
		})
	}

	pool.Do = func(f func()) {
		jobs <- f
	}
	pool.Cancel = sync.OnceFunc(func() { close(jobs) })
	pool.Wait = func(done bool) {
		if done {
			pool.Cancel()
		}
		pool.wg.Wait()
	}

	return pool
}

func (p *Pool) Workers() int { return p.workers }

// Ran is the number of jobs that finished so far.
func (p *Pool) Ran() uint64 { return p.ran.Load() }
