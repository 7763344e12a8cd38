// File: internal/concurrency/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool runs tasks on a fixed set of worker goroutines fed by one lock-free
// queue, and implements fork-join for recursive divide-and-conquer work.

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/syncsplit/api"
)

// TaskFunc is a unit of work to execute.
type TaskFunc func()

const (
	// idleSpins is the number of empty polls before a worker starts sleeping.
	idleSpins   = 64
	idleBackoff = 50 * time.Microsecond
)

// Pool manages a pool of worker goroutines.
type Pool struct {
	queue      *LockFreeQueue[TaskFunc]
	closeCh    chan struct{}
	closed     atomic.Bool
	submitting atomic.Int64 // in-flight Submit calls
	wg         sync.WaitGroup
	numWorkers int

	// statistics
	totalTasks     atomic.Int64
	completedTasks atomic.Int64
	inlineJoins    atomic.Int64
	panics         atomic.Int64
}

var (
	_ api.Executor = (*Pool)(nil)
	_ api.Joiner   = (*Pool)(nil)
)

// NewPool creates a Pool and starts its workers.
func NewPool(opts ...Option) *Pool {
	cfg := poolConfig{queueSize: defaultQueueSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers <= 0 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		queue:      NewLockFreeQueue[TaskFunc](cfg.queueSize),
		closeCh:    make(chan struct{}),
		numWorkers: cfg.workers,
	}
	for i := 0; i < cfg.workers; i++ {
		p.wg.Add(1)
		go p.work(i, cfg.pin)
	}
	tracer().Debugf("pool: started %d workers, queue size %d", cfg.workers, p.queue.Cap())
	return p
}

// Submit enqueues a task for execution. It returns ErrPoolClosed after Close
// and ErrQueueFull if no queue cell is free; it never blocks.
func (p *Pool) Submit(task func()) error {
	p.submitting.Add(1)
	defer p.submitting.Add(-1)
	if p.closed.Load() {
		return ErrPoolClosed
	}
	p.totalTasks.Add(1)
	if !p.queue.Enqueue(task) {
		p.totalTasks.Add(-1)
		return ErrQueueFull
	}
	return nil
}

// Join runs a and b, potentially in parallel, and returns when both have
// finished. a is offered to the workers while b runs on the caller; if a has
// not been picked up by then, the caller keeps executing queued tasks (a
// among them) instead of blocking. Nested Joins therefore cannot deadlock,
// whatever the number of workers. When the queue is full or the pool is
// closed, a runs inline.
//
// A panic in either half is re-raised on the caller after both halves have
// stopped.
func (p *Pool) Join(a, b func()) {
	j := &joinTask{fn: a}
	if err := p.Submit(j.run); err != nil {
		p.inlineJoins.Add(1)
		a()
		b()
		return
	}
	bPanic, bPanicked := capturePanic(b)
	p.helpUntil(&j.done)
	if j.panicked {
		panic(j.recovered)
	}
	if bPanicked {
		panic(bPanic)
	}
}

// NumWorkers returns the number of worker goroutines.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close stops the workers and waits for them to exit. Every task accepted by
// Submit, including one racing with Close, has run before Close returns.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	close(p.closeCh)
	p.wg.Wait()
	for p.submitting.Load() > 0 {
		runtime.Gosched()
	}
	for {
		task, ok := p.queue.Dequeue()
		if !ok {
			break
		}
		p.execute(task)
	}
	tracer().Debugf("pool: closed after %d tasks", p.completedTasks.Load())
}

// Stats returns basic pool metrics.
func (p *Pool) Stats() map[string]int64 {
	total := p.totalTasks.Load()
	completed := p.completedTasks.Load()
	return map[string]int64{
		"total_tasks":     total,
		"completed_tasks": completed,
		"pending_tasks":   total - completed,
		"inline_joins":    p.inlineJoins.Load(),
		"panics":          p.panics.Load(),
		"num_workers":     int64(p.numWorkers),
	}
}

// work is the main loop of worker id.
func (p *Pool) work(id int, pin bool) {
	defer p.wg.Done()
	if pin {
		if err := PinCurrentThread(id); err != nil {
			tracer().Infof("pool: worker %d not pinned: %v", id, err)
		}
		defer UnpinCurrentThread()
	}
	idle := 0
	for {
		if task, ok := p.queue.Dequeue(); ok {
			p.execute(task)
			idle = 0
			continue
		}
		select {
		case <-p.closeCh:
			return
		default:
		}
		idle++
		if idle < idleSpins {
			runtime.Gosched()
		} else {
			time.Sleep(idleBackoff)
		}
	}
}

// helpUntil runs queued tasks on the caller until done is set.
func (p *Pool) helpUntil(done *atomic.Bool) {
	for !done.Load() {
		if task, ok := p.queue.Dequeue(); ok {
			p.execute(task)
			continue
		}
		runtime.Gosched()
	}
}

// execute runs the task and updates statistics, recovering from panics so
// a worker survives a failing task.
func (p *Pool) execute(task TaskFunc) {
	defer p.completedTasks.Add(1)
	if r, panicked := capturePanic(task); panicked {
		p.panics.Add(1)
		tracer().Errorf("pool: task panicked: %v", r)
	}
}

// joinTask is the half of a Join offered to other goroutines.
type joinTask struct {
	fn        func()
	recovered any
	panicked  bool
	done      atomic.Bool
}

func (j *joinTask) run() {
	j.recovered, j.panicked = capturePanic(j.fn)
	j.done.Store(true)
}

func capturePanic(fn func()) (r any, panicked bool) {
	defer func() {
		if r = recover(); r != nil {
			panicked = true
		}
	}()
	fn()
	return nil, false
}
