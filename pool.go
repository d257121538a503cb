package flock

import (
	"sync"
	"sync/atomic"
)

// Pool is a fixed-size, work-stealing job executor. It owns N workers and
// a dispatcher goroutine draining the shared overflow queue, and is the
// only thing that ever owns the workers slice. Workers only borrow it
// back for stealing.
type Pool struct {
	config  Config
	workers []*worker

	overflow   *overflowQueue
	dispatcher *dispatcher

	wg       sync.WaitGroup // worker goroutines
	stopOnce sync.Once
	stopped  atomic.Bool

	// rngPool hands out a scratch xorshift32 per Enqueue call. Producer
	// threads are arbitrary caller goroutines, not a fixed set, so a pool
	// of scratch generators (rather than one shared, mutex-guarded one)
	// keeps victim selection allocation-light without serializing
	// producers.
	rngPool sync.Pool
}

// New constructs a Pool using opts applied over DefaultConfig. It never
// fails unless the resulting configuration is invalid.
func New(opts ...Option) (*Pool, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		config:   cfg,
		workers:  make([]*worker, cfg.NumWorkers),
		overflow: newOverflowQueue(),
	}
	p.rngPool.New = func() interface{} { return newXorshift32() }

	for i := range p.workers {
		p.workers[i] = newWorker(i, p)
	}

	p.dispatcher = newDispatcher(p.overflow, p.workers)

	p.wg.Add(len(p.workers))
	for _, w := range p.workers {
		go func(w *worker) {
			defer p.wg.Done()
			if p.config.OnWorkerStart != nil {
				p.config.OnWorkerStart(w.id)
			}
			w.run()
			if p.config.OnWorkerStop != nil {
				p.config.OnWorkerStop(w.id)
			}
		}(w)
	}

	go p.dispatcher.run()

	return p, nil
}

// NewDefault constructs a Pool with DefaultConfig, panicking only if that
// default configuration is somehow invalid (it never is). A convenience
// for callers that don't want to handle an error from New.
func NewDefault() *Pool {
	p, err := New()
	if err != nil {
		panic(err)
	}
	return p
}

// Enqueue submits job for execution. It never fails for capacity reasons
// and never loses job: up to NumWorkers random workers are tried first,
// and if every sampled worker is full the job spills to the shared
// overflow queue, which the dispatcher guarantees to drain eventually.
//
// Enqueue still places job even after Stop has begun; it may simply
// never run if Stop finishes first.
func (p *Pool) Enqueue(job Job) error {
	if job == nil {
		return ErrNilJob
	}

	rng := p.rngPool.Get().(*xorshift32)
	defer p.rngPool.Put(rng)

	n := len(p.workers)
	for i := 0; i < n; i++ {
		idx := rng.intn(n)
		w := p.workers[idx]
		if !w.deque.full() {
			w.push(job)
			return nil
		}
	}

	p.overflow.push(job)
	return nil
}

// Stop is an idempotent, cooperative shutdown: it signals the dispatcher
// and every worker, then blocks until all of their goroutines have
// returned before this call returns.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.stopped.Store(true)

		p.overflow.requestStop()
		for _, w := range p.workers {
			w.requestStop()
		}

		p.wg.Wait()
		<-p.dispatcher.done
	})
}

// IsStopped reports whether Stop has been called (it may still be in
// progress draining in-flight jobs).
func (p *Pool) IsStopped() bool {
	return p.stopped.Load()
}

// NumWorkers returns the number of worker goroutines in the pool.
func (p *Pool) NumWorkers() int {
	return len(p.workers)
}
