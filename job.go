package flock

// Job is the unit of work the pool schedules. It is an opaque closure.
// The core never inspects or owns whatever state it captures, and makes
// no assumption about that state beyond "the submitter keeps it alive
// until the job runs".
type Job func()
