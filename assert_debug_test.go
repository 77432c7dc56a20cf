//go:build xctlock_debug

package xctlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertNdPanicsUnderDebugTag(t *testing.T) {
	assert.Panics(t, func() { assertNd(false, "boom") })
}

func TestAssertNdDoesNotPanicWhenConditionHolds(t *testing.T) {
	assert.NotPanics(t, func() { assertNd(true, "fine") })
}
