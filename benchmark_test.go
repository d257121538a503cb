package flock

import (
	"sync"
	"testing"
)

// ============================================================================
// ENQUEUE THROUGHPUT
// ============================================================================

func BenchmarkPool_Enqueue(b *testing.B) {
	p, err := New()
	if err != nil {
		b.Fatalf("New() error: %v", err)
	}
	defer p.Stop()

	var wg sync.WaitGroup
	wg.Add(b.N)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Enqueue(func() { wg.Done() })
	}
	wg.Wait()
}

func BenchmarkPool_EnqueueParallel(b *testing.B) {
	p, err := New()
	if err != nil {
		b.Fatalf("New() error: %v", err)
	}
	defer p.Stop()

	var wg sync.WaitGroup
	wg.Add(b.N)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			p.Enqueue(func() { wg.Done() })
		}
	})
	wg.Wait()
}

// ============================================================================
// DEQUE MICROBENCHMARKS
// ============================================================================

func BenchmarkDeque_PushPopBack(b *testing.B) {
	d := newDeque(4096)
	job := func() {}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.push(job)
		d.popBack()
	}
}

func BenchmarkDeque_StealContention(b *testing.B) {
	d := newDeque(4096)
	for i := 0; i < 4096; i++ {
		d.push(func() {})
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			d.popFront()
		}
	})
}
