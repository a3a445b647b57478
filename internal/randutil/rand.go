package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	return rand.New(NewSource(seed))
}

// NewSource returns the PCG source behind New. Callers that need to persist
// generator state (checkpoints) keep the source, since *rand.PCG implements
// encoding.BinaryMarshaler.
func NewSource(seed int64) *rand.PCG {
	u := uint64(seed)
	return rand.NewPCG(mix(u), mix(u+goldenRatio64))
}

// Resolve maps the "unset" seed 0 to a time-derived seed.
func Resolve(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// Derive produces a child seed for stream n of a parent seed, so that
// independent workers (matches, configurations) get uncorrelated sequences.
func Derive(seed int64, n int) int64 {
	return int64(mix(uint64(seed) + uint64(n)*goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
