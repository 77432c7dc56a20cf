package proptest

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxConcurrencyCounter(t *testing.T) {
	var c MaxConcurrencyCounter
	var peak int64

	err := RunConcurrent(8, func(i int) error {
		exit := c.Enter()
		defer exit()
		if m := int64(c.Max()); m > atomic.LoadInt64(&peak) {
			atomic.StoreInt64(&peak, m)
		}
		return nil
	})

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, c.Max(), 1)
	assert.LessOrEqual(t, c.Max(), 8)
}

func TestBarrierReleasesAllAtOnce(t *testing.T) {
	n := 5
	b := NewBarrier(n)
	var passed int64

	err := RunConcurrent(n, func(i int) error {
		b.Wait()
		atomic.AddInt64(&passed, 1)
		return nil
	})

	assert.NoError(t, err)
	assert.EqualValues(t, n, passed)
}
