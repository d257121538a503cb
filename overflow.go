package flock

import (
	"runtime"
	"sync"
	"sync/atomic"

	iqueue "github.com/nrjordan/flock/internal/queue"
)

// overflowQueue is the globally-locked spill queue: jobs land here only
// when enqueue's random sampling couldn't find a non-full worker.
// remaining is both the fast emptiness check and the dispatcher's wait
// address. Go has no native atomic wait/notify on integers, so a
// Mutex+Cond pair plays that role, gated by the atomic counter for the
// lock-free fast path.
type overflowQueue struct {
	lock spinlock
	jobs *iqueue.FIFO

	remaining atomic.Int32

	mu       sync.Mutex
	cond     *sync.Cond
	stopping atomic.Bool
}

func newOverflowQueue() *overflowQueue {
	o := &overflowQueue{jobs: iqueue.New()}
	o.cond = sync.NewCond(&o.mu)
	return o
}

// push appends job under the spin lock, then bumps remaining and wakes
// the dispatcher. The lock is never held across the wake.
func (o *overflowQueue) push(job Job) {
	o.lock.lock()
	o.jobs.PushBack(job)
	o.lock.unlock()

	o.remaining.Add(1)

	o.mu.Lock()
	o.cond.Signal()
	o.mu.Unlock()
}

// pop removes the front job, if any, decrementing remaining.
func (o *overflowQueue) pop() (Job, bool) {
	o.lock.lock()
	v, ok := o.jobs.PopFront()
	o.lock.unlock()

	if !ok {
		return nil, false
	}
	o.remaining.Add(-1)
	return v.(Job), true
}

// waitForWork blocks until remaining > 0 or a stop has been requested.
func (o *overflowQueue) waitForWork() {
	o.mu.Lock()
	for o.remaining.Load() == 0 && !o.stopping.Load() {
		o.cond.Wait()
	}
	o.mu.Unlock()
}

// requestStop wakes the dispatcher unconditionally so it can observe the
// stop flag and return.
func (o *overflowQueue) requestStop() {
	o.stopping.Store(true)
	o.mu.Lock()
	o.cond.Broadcast()
	o.mu.Unlock()
}

// dispatcher drains the overflow queue into worker deques on a dedicated
// goroutine running for the pool's full lifetime.
type dispatcher struct {
	queue   *overflowQueue
	workers []*worker
	rng     *xorshift32
	done    chan struct{}
}

func newDispatcher(q *overflowQueue, workers []*worker) *dispatcher {
	return &dispatcher{
		queue:   q,
		workers: workers,
		rng:     newXorshift32(),
		done:    make(chan struct{}),
	}
}

// run is the dispatcher's main loop:
//  1. wait while the overflow queue is empty,
//  2. return if shutdown has been requested,
//  3. pop the front job (spurious wakes simply loop),
//  4. place it in some non-full worker, probing linearly and yielding
//     after ~2N failed probes to avoid livelocking under sustained
//     overload.
func (d *dispatcher) run() {
	defer close(d.done)

	for {
		d.queue.waitForWork()

		if d.queue.stopping.Load() {
			return
		}

		job, ok := d.queue.pop()
		if !ok {
			continue
		}

		d.place(job)
	}
}

func (d *dispatcher) place(job Job) {
	n := len(d.workers)
	idx := d.rng.intn(n)
	probes := 0

	for d.workers[idx].deque.full() {
		idx = (idx + 1) % n
		probes++
		if probes > 2*n {
			runtime.Gosched()
			probes = 0
		}
	}

	d.workers[idx].push(job)
}
