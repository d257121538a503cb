package flock

import (
	"fmt"
	"runtime"
)

// Config holds all configuration for a Pool. Build one with DefaultConfig
// and Option functions rather than constructing it directly.
type Config struct {
	// NumWorkers is the number of worker goroutines. DefaultConfig sets it
	// to runtime.GOMAXPROCS(0)-1, clamped to at least 1; validate rejects
	// values below 1.
	NumWorkers int

	// DequeCapacity is each worker's fixed ring-buffer size. Must be a
	// power of two; non-power-of-two values are rounded up. Defaults to
	// 4096.
	DequeCapacity int

	// PanicHandler is invoked with the recovered value when a job panics.
	// If nil, the panic and a stack trace are written to stderr.
	PanicHandler func(interface{})

	// OnWorkerStart/OnWorkerStop are optional lifecycle hooks, invoked
	// from the worker's own goroutine.
	OnWorkerStart func(workerID int)
	OnWorkerStop  func(workerID int)
}

// DefaultConfig returns hardware-parallelism-minus-one workers (clamped
// >= 1) and a 4096-slot deque per worker.
func DefaultConfig() Config {
	return Config{
		NumWorkers:    defaultNumWorkers(),
		DequeCapacity: 4096,
	}
}

func defaultNumWorkers() int {
	n := runtime.GOMAXPROCS(0) - 1
	if n < 1 {
		n = 1
	}
	return n
}

// Option configures a Pool at construction time.
type Option func(*Config)

// WithNumWorkers overrides the worker count. Values < 1 are ignored.
func WithNumWorkers(n int) Option {
	return func(c *Config) {
		if n >= 1 {
			c.NumWorkers = n
		}
	}
}

// WithDequeCapacity overrides each worker's deque capacity. Values < 1
// are ignored; the result is rounded up to a power of two.
func WithDequeCapacity(n int) Option {
	return func(c *Config) {
		if n >= 1 {
			c.DequeCapacity = n
		}
	}
}

// WithPanicHandler installs a custom handler for recovered job panics.
func WithPanicHandler(h func(interface{})) Option {
	return func(c *Config) { c.PanicHandler = h }
}

// WithOnWorkerStart installs a hook called once from each worker
// goroutine before it enters its main loop.
func WithOnWorkerStart(f func(workerID int)) Option {
	return func(c *Config) { c.OnWorkerStart = f }
}

// WithOnWorkerStop installs a hook called once from each worker goroutine
// after it has drained and returned from its main loop.
func WithOnWorkerStop(f func(workerID int)) Option {
	return func(c *Config) { c.OnWorkerStop = f }
}

// validate checks the configuration, rounding DequeCapacity up to a power
// of two rather than rejecting it (4096 is only a default, not a hard
// requirement on the caller).
func (c *Config) validate() error {
	if c.NumWorkers < 1 {
		return errInvalidConfig(fmt.Sprintf("NumWorkers must be >= 1, got %d", c.NumWorkers))
	}
	if c.DequeCapacity < 1 {
		return errInvalidConfig(fmt.Sprintf("DequeCapacity must be >= 1, got %d", c.DequeCapacity))
	}
	c.DequeCapacity = int(nextPow2Int64(int64(c.DequeCapacity)))
	return nil
}
