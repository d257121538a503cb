// Package flock is an in-process job executor built on per-worker
// work-stealing deques.
//
// A Pool owns a fixed set of worker goroutines, each with its own bounded
// Chase-Lev ring deque. Submitting a job tries a few random workers first;
// if all of them are full the job spills into a shared, spin-locked
// overflow queue that a dedicated dispatcher goroutine drains back into
// whichever worker has room. Idle workers steal from random peers before
// parking, and park on a double-checked empty snapshot so a push can
// never race past a sleeping worker unnoticed.
//
// # Quick start
//
//	pool, err := flock.New(flock.WithNumWorkers(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Stop()
//
//	var done sync.WaitGroup
//	done.Add(1)
//	pool.Enqueue(func() {
//	    fmt.Println("job executed")
//	    done.Done()
//	})
//	done.Wait()
//
// # What this package is not
//
// Flock schedules opaque closures. It does not offer job cancellation (a
// job that has started always runs to completion), priority or fairness
// policies beyond FIFO-per-owner/LIFO-for-owner, or a metrics/observability
// surface. These are explicitly out of scope; see the design notes in the
// repository root for the reasoning.
//
// # Concurrency
//
// Enqueue is safe to call from any number of goroutines concurrently. Stop
// is idempotent and blocks until every worker and the dispatcher have
// exited.
package flock
