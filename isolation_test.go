package xctlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsolationLevelString(t *testing.T) {
	assert.Equal(t, "dirty-read", DirtyRead.String())
	assert.Equal(t, "snapshot", Snapshot.String())
	assert.Equal(t, "serializable", Serializable.String())
	assert.Equal(t, "unknown", IsolationLevel(99).String())
}
