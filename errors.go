package flock

import "fmt"

// Common errors returned by the pool. The core has no recoverable
// user-visible errors on its hot paths. Capacity-pressure, race-loss,
// contention and shutdown-while-waiting are never surfaced as errors.
// These cover the remaining genuine error kinds: a nil job and an invalid
// configuration.
var (
	// ErrPoolShutdown is not returned by any function in this package:
	// Enqueue never rejects a job on account of shutdown, it still places
	// the job, which may simply never run if Stop finishes first. A
	// stopped pool is reported by IsStopped.
	ErrPoolShutdown = &PoolError{msg: "pool is shutdown"}

	// ErrNilJob is returned when Enqueue is called with a nil Job.
	ErrNilJob = &PoolError{msg: "job is nil"}
)

// PoolError represents an error raised by pool construction,
// configuration or Enqueue. It implements error and supports
// errors.Unwrap.
type PoolError struct {
	msg string
	err error
}

func (e *PoolError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("flock: %s: %v", e.msg, e.err)
	}
	return fmt.Sprintf("flock: %s", e.msg)
}

func (e *PoolError) Unwrap() error {
	return e.err
}

func errInvalidConfig(msg string) error {
	return &PoolError{msg: "invalid config: " + msg}
}
