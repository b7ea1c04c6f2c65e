package engine

import (
	"math/rand"
	"time"
)

// Cancel stops a scheduled callback. Calling it more than once is harmless.
type Cancel func()

// Clock is the engine's only view of time. Implementations must deliver every
// callback on the same goroutine that drives the Runner.
type Clock interface {
	// Now returns a monotonic reading; only differences between readings are used.
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Cancel
	Every(interval time.Duration, fn func()) Cancel
}

// Rand is the randomness the engine draws from. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand seeds a math/rand source; a zero seed uses the current time.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
