package flock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ============================================================================
// SINGLE JOB EXECUTES EXACTLY ONCE
// ============================================================================

func TestWorker_RunsLocalJobExactlyOnce(t *testing.T) {
	p, err := New(WithNumWorkers(1))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer p.Stop()

	var count int32
	var wg sync.WaitGroup
	wg.Add(1)

	p.workers[0].push(func() {
		atomic.AddInt32(&count, 1)
		wg.Done()
	})

	wg.Wait()

	time.Sleep(20 * time.Millisecond)
	if c := atomic.LoadInt32(&count); c != 1 {
		t.Fatalf("job ran %d times, want 1", c)
	}
}

// ============================================================================
// STEALING
// ============================================================================

func TestWorker_StealsFromPeer(t *testing.T) {
	p, err := New(WithNumWorkers(2))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer p.Stop()

	// Wait until both workers have run dry and parked.
	deadline := time.Now().Add(2 * time.Second)
	for p.workers[0].state.load() != stateSleeping || p.workers[1].state.load() != stateSleeping {
		if time.Now().After(deadline) {
			t.Fatal("workers never parked")
		}
		time.Sleep(time.Millisecond)
	}

	done := make(chan struct{})
	// Push straight into the parked worker 1's deque without waking it and
	// wake only worker 0, so the only way this runs is worker 0 stealing it
	// via popFront.
	p.workers[1].deque.push(func() { close(done) })
	p.workers[0].wake()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job left in a peer's deque was never stolen and run")
	}
}

func TestWorker_SingleWorkerNeverSteals(t *testing.T) {
	p, err := New(WithNumWorkers(1))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer p.Stop()

	if _, ok := p.workers[0].steal(); ok {
		t.Fatal("steal() on a single-worker pool should never find a peer")
	}
}

// ============================================================================
// PANIC ISOLATION
// ============================================================================

func TestWorker_PanicRecoveredAndPoolKeepsRunning(t *testing.T) {
	var recovered interface{}
	var mu sync.Mutex

	p, err := New(WithNumWorkers(1), WithPanicHandler(func(r interface{}) {
		mu.Lock()
		recovered = r
		mu.Unlock()
	}))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer p.Stop()

	p.Enqueue(func() { panic("boom") })

	var wg sync.WaitGroup
	wg.Add(1)
	p.Enqueue(func() { wg.Done() })

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool stopped processing jobs after a panic")
	}

	mu.Lock()
	defer mu.Unlock()
	if recovered != "boom" {
		t.Fatalf("PanicHandler received %v, want \"boom\"", recovered)
	}
}

// ============================================================================
// SLEEP / WAKE HANDSHAKE
// ============================================================================

func TestWorker_WakesFromSleepOnPush(t *testing.T) {
	p, err := New(WithNumWorkers(1))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer p.Stop()

	// Give the worker a chance to run dry and park.
	time.Sleep(20 * time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	p.Enqueue(func() { wg.Done() })

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("parked worker never woke up to run a new job")
	}
}
