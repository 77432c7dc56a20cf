// Package proptest holds the concurrent test harness shared by xctlock's
// property tests. It generalizes the teacher package's own
// benchmarkLocking/TestDrainReads barrier-and-goroutine-fleet style into a
// couple of reusable helpers built on golang.org/x/sync/errgroup instead of
// a raw channel barrier.
package proptest

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Barrier releases N goroutines at (approximately) the same instant: each
// calls Wait, and nothing proceeds until all N have called it.
type Barrier struct {
	wg sync.WaitGroup
	ch chan struct{}
	n  int
}

// NewBarrier returns a barrier for n participants.
func NewBarrier(n int) *Barrier {
	b := &Barrier{ch: make(chan struct{}), n: n}
	b.wg.Add(n)
	return b
}

// Wait blocks until all n participants have called Wait.
func (b *Barrier) Wait() {
	b.wg.Done()
	b.wg.Wait()
}

// RunConcurrent runs n copies of fn concurrently, each passed its own index
// in [0,n), and joins them with an errgroup so the first error (if any)
// propagates to the caller once every goroutine has returned.
func RunConcurrent(n int, fn func(i int) error) error {
	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

// MaxConcurrencyCounter instruments a critical section to find the peak
// number of goroutines observed inside it simultaneously — the mechanism
// spec.md §8 (P1) names for verifying exclusive mutual exclusion.
type MaxConcurrencyCounter struct {
	mu      sync.Mutex
	current int
	max     int
}

// Enter records one more goroutine entering the critical section and
// returns a function to call on exit.
func (c *MaxConcurrencyCounter) Enter() func() {
	c.mu.Lock()
	c.current++
	if c.current > c.max {
		c.max = c.current
	}
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.current--
		c.mu.Unlock()
	}
}

// Max returns the peak concurrency observed so far.
func (c *MaxConcurrencyCounter) Max() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.max
}
