package flock

import (
	"crypto/rand"
	"encoding/binary"
)

// xorshift32 is a cheap, non-cryptographic PRNG used only for victim
// selection and dispatch placement. It affects statistical fairness
// only, never correctness. One instance lives per worker (and one inside
// the dispatcher), never shared, so it needs no synchronization.
type xorshift32 struct {
	state uint32
}

// newXorshift32 seeds the generator from a one-shot OS entropy read,
// guarding against the degenerate all-zero state (which would make
// xorshift32 output zero forever).
func newXorshift32() *xorshift32 {
	return &xorshift32{state: seedFromEntropy()}
}

func seedFromEntropy() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1
	}
	seed := binary.LittleEndian.Uint32(buf[:])
	if seed == 0 {
		seed = 1
	}
	return seed
}

// next returns the next uniform uint32 in the sequence.
func (r *xorshift32) next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// intn returns a uniform value in [0, n). n must be > 0.
func (r *xorshift32) intn(n int) int {
	return int(r.next() % uint32(n))
}
