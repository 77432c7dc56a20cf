//go:build !xctlock_debug

package xctlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertNdIsNoOpWithoutDebugTag(t *testing.T) {
	assert.NotPanics(t, func() { assertNd(false, "ignored outside xctlock_debug builds") })
}
