package flock

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
)

// workerState is a four-state machine for introspection/tests only.
// Nothing in the core branches on it; the stop decision reads the
// worker's separate stopping flag.
type workerState int32

const (
	stateIdleSearching workerState = iota
	stateRunning
	stateSleeping
	stateStopping
)

func (s workerState) String() string {
	switch s {
	case stateIdleSearching:
		return "idle-searching"
	case stateRunning:
		return "running"
	case stateSleeping:
		return "sleeping"
	case stateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// workerState32 is a tiny atomic box around workerState; kept as its own
// type only so worker's field declaration below reads cleanly.
type workerState32 struct{ v atomic.Int32 }

func (s *workerState32) store(st workerState) { s.v.Store(int32(st)) }
func (s *workerState32) load() workerState    { return workerState(s.v.Load()) }

// worker owns exactly one deque and runs on exactly one dedicated
// goroutine for the pool's entire lifetime. Its back-reference to the
// pool is a borrow, never ownership. The pool is the only thing that ever
// owns the workers slice.
type worker struct {
	id    int
	pool  *Pool
	deque *deque
	rng   *xorshift32

	state workerState32

	// mu/cond implement a park/wake handshake. Go exposes no native
	// atomic wait/notify on integers, so a Mutex+Cond pair stands in for
	// it.
	mu       sync.Mutex
	cond     *sync.Cond
	stopping atomic.Bool

	jobsRun atomic.Uint64
}

func newWorker(id int, p *Pool) *worker {
	w := &worker{
		id:    id,
		pool:  p,
		deque: newDeque(int64(p.config.DequeCapacity)),
		rng:   newXorshift32(),
	}
	w.cond = sync.NewCond(&w.mu)
	w.state.store(stateIdleSearching)
	return w
}

// push places job in this worker's deque and wakes it if sleeping.
// Callers are the pool's enqueue path (random placement) and the
// dispatcher. The worker itself never calls this; it only ever calls its
// own deque's popBack directly.
func (w *worker) push(job Job) {
	w.deque.push(job)
	w.wake()
}

func (w *worker) wake() {
	w.mu.Lock()
	w.cond.Signal()
	w.mu.Unlock()
}

// requestStop flags this worker to exit and wakes it unconditionally so
// it can observe the flag even if parked.
func (w *worker) requestStop() {
	w.stopping.Store(true)
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
}

// run is the worker's main loop: local pop, then steal, then sleep on the
// double-checked empty snapshot. It terminates only once stop has been
// requested and no more local/stolen work remains.
func (w *worker) run() {
	for {
		if job, ok := w.deque.popBack(); ok {
			w.state.store(stateRunning)
			w.exec(job)
			continue
		}

		w.state.store(stateIdleSearching)
		if job, ok := w.steal(); ok {
			w.state.store(stateRunning)
			w.exec(job)
			continue
		}

		if w.stopping.Load() {
			break
		}

		w.sleepUntilWoken()
	}

	w.state.store(stateStopping)

	// A push racing with shutdown may have landed a job this loop never
	// saw. Drain it before the goroutine exits.
	w.drain()
}

// steal scans peers starting at a randomized offset, visiting each at
// most once per pass.
func (w *worker) steal() (Job, bool) {
	peers := w.pool.workers
	n := len(peers)
	if n <= 1 {
		return nil, false
	}

	start := w.rng.intn(n)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if idx == w.id {
			continue
		}
		if job, ok := peers[idx].deque.popFront(); ok {
			return job, true
		}
	}
	return nil, false
}

// sleepUntilWoken performs the sleep handshake: snapshot bottom then top.
// If an item appeared between the steal pass and the snapshot, don't
// sleep. Otherwise block until a push or a stop request signals cond.
// Both happen while mu is held, so no wake can be lost between the check
// and the Wait call.
func (w *worker) sleepUntilWoken() {
	w.mu.Lock()
	b := w.deque.bottom.Load()
	t := w.deque.top.Load()

	if t < b || w.stopping.Load() {
		w.mu.Unlock()
		return
	}

	w.state.store(stateSleeping)
	w.cond.Wait()
	w.mu.Unlock()
}

// exec runs job with panic isolation. The job has already been removed
// from the deque, so a panic here cannot corrupt deque state.
func (w *worker) exec(job Job) {
	defer func() {
		if r := recover(); r != nil {
			if h := w.pool.config.PanicHandler; h != nil {
				h(r)
			} else {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				fmt.Fprintf(os.Stderr, "flock: panic recovered in job: %v\n%s\n", r, buf[:n])
			}
		}
	}()

	job()
	w.jobsRun.Add(1)
}

// drain runs every job still reachable from this worker's own deque.
// Called once by run, on the worker's own goroutine, after the main loop
// has exited, so calling the owner-side popBack directly is safe.
func (w *worker) drain() {
	for {
		job, ok := w.deque.popBack()
		if !ok {
			return
		}
		w.exec(job)
	}
}
