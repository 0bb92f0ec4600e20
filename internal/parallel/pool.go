// Package parallel provides the worker pool behind row-parallel mask
// rasterization. Scanline fills and grid evaluations are embarrassingly
// parallel: each task owns a disjoint slice of output rows, so no
// synchronization beyond completion tracking is needed.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines with per-worker queues.
// Workers steal from each other when their own queue runs dry, which
// keeps rows balanced when distortion makes some strips slower than
// others.
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// New creates a pool with the given number of workers; 0 or negative
// means GOMAXPROCS. Workers start immediately.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	mine := p.queues[id]

	for {
		select {
		case <-p.done:
			p.drain(mine)
			return
		case work := <-mine:
			if work != nil {
				work()
			}
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
			} else {
				select {
				case <-p.done:
					p.drain(mine)
					return
				case work := <-mine:
					if work != nil {
						work()
					}
				}
			}
		}
	}
}

func (p *Pool) drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal takes one task from another worker's queue, nil when every
// queue is empty.
func (p *Pool) steal(myID int) func() {
	for i := 0; i < p.workers; i++ {
		if i == myID {
			continue
		}
		select {
		case work := <-p.queues[i]:
			return work
		default:
		}
	}
	return nil
}

// Run distributes the tasks round-robin across workers and waits for
// all of them. A closed pool runs nothing.
func (p *Pool) Run(tasks []func()) {
	if len(tasks) == 0 || !p.running.Load() {
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, fn := range tasks {
		task := fn
		wrapped := func() {
			defer wg.Done()
			task()
		}
		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			wg.Done()
		}
	}
	wg.Wait()
}

// Close stops accepting work, finishes everything queued and stops the
// workers. Safe to call more than once.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the worker count.
func (p *Pool) Workers() int { return p.workers }

// Rows runs fn for every row index in [0, height), splitting the rows
// into one contiguous strip per worker. A nil pool runs sequentially,
// which keeps small buffers cheap and tests deterministic.
func Rows(pool *Pool, height int, fn func(row int)) {
	if pool == nil || height < 2*pool.Workers() {
		for y := 0; y < height; y++ {
			fn(y)
		}
		return
	}

	n := pool.Workers()
	chunk := (height + n - 1) / n
	tasks := make([]func(), 0, n)
	for lo := 0; lo < height; lo += chunk {
		hi := min(lo+chunk, height)
		lo := lo
		tasks = append(tasks, func() {
			for y := lo; y < hi; y++ {
				fn(y)
			}
		})
	}
	pool.Run(tasks)
}
