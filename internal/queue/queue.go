// Package queue wraps a plain ring-buffer FIFO for use as the pool's
// overflow spill queue: an ordered sequence of jobs that didn't fit in
// any worker's deque. It adds no synchronization of its own. Callers
// (overflow.go) hold their own spin lock around every call.
package queue

import "github.com/eapache/queue"

// Jobber is satisfied by any value the overflow queue stores; kept
// generic-free to match eapache/queue's pre-generics interface{} API.
type Jobber = interface{}

// FIFO is a thin, non-thread-safe wrapper around eapache/queue.Queue.
type FIFO struct {
	q *queue.Queue
}

// New returns an empty FIFO.
func New() *FIFO {
	return &FIFO{q: queue.New()}
}

// PushBack appends v to the tail.
func (f *FIFO) PushBack(v Jobber) {
	f.q.Add(v)
}

// PopFront removes and returns the head element. ok is false if empty.
func (f *FIFO) PopFront() (v Jobber, ok bool) {
	if f.q.Length() == 0 {
		return nil, false
	}
	return f.q.Remove(), true
}

// Len returns the number of queued elements.
func (f *FIFO) Len() int {
	return f.q.Length()
}
