package xctlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Scenario 6 (spec.md §8): a record relocated by a structural operation can
// be tracked from its old key to its new header/payload.
func TestMovedRecordTrackerRoundTrip(t *testing.T) {
	tr := NewMovedRecordTracker()

	result := tr.Track("key-1")
	assert.True(t, result.Failed(), "untracked key must report failure")

	newHeader := &RecordHeader{}
	newPayload := []byte("relocated")
	tr.RecordMove("key-1", newHeader, newPayload)

	result = tr.Track("key-1")
	assert.False(t, result.Failed())
	assert.Same(t, newHeader, result.NewHeader)
	assert.Equal(t, newPayload, result.NewPayload)
}

func TestMovedRecordTrackerDistinctKeys(t *testing.T) {
	tr := NewMovedRecordTracker()
	tr.RecordMove(1, &RecordHeader{}, []byte("a"))
	tr.RecordMove(2, &RecordHeader{}, []byte("b"))

	assert.False(t, tr.Track(1).Failed())
	assert.False(t, tr.Track(2).Failed())
	assert.True(t, tr.Track(3).Failed())
}
