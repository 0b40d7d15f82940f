package generator

import "math/rand"

// splitmix64 is the bit-mixer teacher's scenario generator uses to turn a
// seed plus a sequence number into a well-distributed 64-bit value
// (javiermolinar/tercios/internal/scenario/generator.go). Reused verbatim
// here to derive per-call seeds so repeated generate() calls against the
// same GeneratorConfig stay deterministic without sharing mutable RNG
// state.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// newRand returns a math/rand source seeded deterministically from seed and
// an arbitrary per-call salt, so two generators built from the same config
// but invoked at different call sites never share a stream.
func newRand(seed uint64, salt uint64) *rand.Rand {
	mixed := splitmix64(seed ^ splitmix64(salt))
	return rand.New(rand.NewSource(int64(mixed))) //nolint:gosec // deterministic payloads are the point
}
