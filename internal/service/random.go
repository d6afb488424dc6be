package service

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandomSource produces the pseudo-random values behind the mock providers.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
	Uint64() uint64
	Int64N(n int64) int64
}

// lockedSource serializes access to a RandomSource shared by concurrent requests
type lockedSource struct {
	mu  sync.Mutex
	src RandomSource
}

func newLockedSource(src RandomSource) *lockedSource {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &lockedSource{src: src}
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func (l *lockedSource) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Uint64()
}

func (l *lockedSource) Int64N(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Int64N(n)
}

// fill writes random bytes into b
func (l *lockedSource) fill(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := 0; i < len(b); i += 8 {
		v := l.src.Uint64()
		for j := 0; j < 8 && i+j < len(b); j++ {
			b[i+j] = byte(v >> (8 * j))
		}
	}
}
