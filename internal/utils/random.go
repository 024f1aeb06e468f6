package utils

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandomSource is the randomness used for gameplay shuffling and mocked
// recognition. A fixed seed makes every draw reproducible.
type RandomSource interface {
	IntN(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomSource returns a source safe for concurrent use. A zero seed
// picks one from the current time.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
