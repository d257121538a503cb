package flock

import "sync/atomic"

// cacheLinePad prevents false sharing between hot fields that different
// threads pound on concurrently. top is advanced by thieves, bottom by
// pushers and the owner's popBack; put them on separate cache lines.
type cacheLinePad struct {
	_ [64]byte
}

// deque is a bounded, single-owner, multi-thief Chase-Lev work-stealing
// ring buffer. Capacity is fixed at construction (a power of two, default
// 4096) and never resized: a push that would overflow it is the caller's
// responsibility to reroute elsewhere.
//
// Unlike a resizable Chase-Lev deque, this one additionally serializes
// push/popBack/popFront behind a per-deque spin lock. Pushes come from
// producer goroutines (the pool's Enqueue and the dispatcher), not from
// the owner, so the lock is what serializes the writers of bottom and the
// ring and keeps thieves reading top and bottom together seeing a
// consistent pair.
type deque struct {
	_ cacheLinePad
	// top is the steal end; thieves race to CAS it forward.
	top atomic.Int64
	_   cacheLinePad
	// bottom is the tail end; written only under the spin lock, by push
	// and by the owner's popBack.
	bottom atomic.Int64
	_      cacheLinePad

	lock     spinlock
	capacity int64
	mask     int64
	ring     []Job
}

// newDeque allocates a deque of the given capacity, rounded up to the next
// power of two if it isn't already one.
func newDeque(capacity int64) *deque {
	capacity = nextPow2Int64(capacity)
	return &deque{
		capacity: capacity,
		mask:     capacity - 1,
		ring:     make([]Job, capacity),
	}
}

func nextPow2Int64(n int64) int64 {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// full reports whether the deque has no room for another push. Advisory
// only: the answer may already be stale by the time the caller acts on
// it.
func (d *deque) full() bool {
	bottom := d.bottom.Load()
	top := d.top.Load()
	return bottom-top >= d.capacity
}

// push appends a job at the tail. Any goroutine may call it; the spin
// lock serializes it against popBack and popFront. The caller must have
// already checked full(). push never blocks and never grows the ring.
func (d *deque) push(job Job) {
	d.lock.lock()
	defer d.lock.unlock()

	b := d.bottom.Load()
	d.ring[b&d.mask] = job
	d.bottom.Store(b + 1)
}

// popBack claims the most recently pushed job (LIFO, owner-only). This is
// the delicate operation in the whole engine: when exactly one job
// remains, a thief's popFront may be racing to claim the same slot, and
// only one of the two may win.
func (d *deque) popBack() (Job, bool) {
	d.lock.lock()
	defer d.lock.unlock()

	b := d.bottom.Load() - 1
	d.bottom.Store(b)

	top := d.top.Load()

	if top > b {
		// Already empty, restore bottom and bail.
		d.bottom.Store(b + 1)
		return nil, false
	}

	job := d.ring[b&d.mask]

	if top == b {
		// Exactly one element: race with any thief's popFront. Whoever
		// wins the CAS on top owns the job; the loser gets nothing. The
		// deque ends empty either way, so bottom is restored on both
		// branches.
		won := d.top.CompareAndSwap(top, top+1)
		d.bottom.Store(b + 1)
		if !won {
			return nil, false
		}
		return job, true
	}

	// More than one element remained: no race was possible, top could not
	// have moved past b.
	return job, true
}

// popFront claims the oldest job (FIFO, thief-only in normal operation;
// an owner never steals from itself).
func (d *deque) popFront() (Job, bool) {
	d.lock.lock()
	defer d.lock.unlock()

	top := d.top.Load()
	bottom := d.bottom.Load()

	if top >= bottom {
		return nil, false
	}

	// The read must happen before the CAS commits the claim: once top
	// advances, the owner is free to overwrite this slot with a new push.
	job := d.ring[top&d.mask]

	if !d.top.CompareAndSwap(top, top+1) {
		// Lost the race. Owner's popBack or another thief got there
		// first. Not an error: the caller simply tries elsewhere.
		return nil, false
	}

	return job, true
}

// size returns a best-effort snapshot of the number of queued jobs.
func (d *deque) size() int64 {
	n := d.bottom.Load() - d.top.Load()
	if n < 0 {
		return 0
	}
	return n
}
