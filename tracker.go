package xctlock

import "sync"

// RecordKey identifies a record's logical position, stable across
// relocation, so a MovedRecordTracker can map an old physical address to
// its new one. The commit protocol's real tracker would derive this from
// the owning index's key; here it is an opaque caller-supplied value.
type RecordKey any

// MovedRecordTracker is a minimal in-memory stand-in for the index layer
// that RecordHeader.NeedsTrackMoved refers callers to. It exists only to
// exercise TrackMovedRecordResult end-to-end in tests: a real engine
// re-resolves a moved or next-layer record by walking its B-tree/hash
// index, not by consulting a flat map.
type MovedRecordTracker struct {
	mu    sync.RWMutex
	moves map[RecordKey]TrackMovedRecordResult
}

// NewMovedRecordTracker returns an empty tracker.
func NewMovedRecordTracker() *MovedRecordTracker {
	return &MovedRecordTracker{moves: make(map[RecordKey]TrackMovedRecordResult)}
}

// RecordMove registers that the record at key now lives at the given
// header/payload addresses.
func (t *MovedRecordTracker) RecordMove(key RecordKey, newHeader *RecordHeader, newPayload []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.moves[key] = TrackMovedRecordResult{NewHeader: newHeader, NewPayload: newPayload}
}

// Track resolves key to its current address. The zero TrackMovedRecordResult
// (Failed() == true) is returned if key was never recorded as moved.
func (t *MovedRecordTracker) Track(key RecordKey) TrackMovedRecordResult {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.moves[key]
}
