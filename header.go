package xctlock

import "encoding/binary"

// MarshalBinary writes the canonical 8-byte, little-endian wire layout of
// an ExclusiveLock (spec.md §6): bytes[0:4] = tail (thread_id:16 <<16 |
// slot_index:16), bytes[4:8] = the repurposed high word.
func (l *ExclusiveLock) MarshalBinary() [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint32(b[0:4], l.tail.Load())
	binary.LittleEndian.PutUint32(b[4:8], l.debugGen.Load())
	return b
}

// UnmarshalBinary loads an ExclusiveLock from its canonical layout.
// Page-init / deserialization path only, not safe concurrent with use.
func (l *ExclusiveLock) UnmarshalBinary(b [8]byte) {
	l.tail.Store(binary.LittleEndian.Uint32(b[0:4]))
	l.debugGen.Store(binary.LittleEndian.Uint32(b[4:8]))
}

// MarshalBinary writes the canonical 8-byte, little-endian wire layout of
// a SharedLock (spec.md §6): bytes[0:4] = tail, bytes[4:6] = next_writer,
// bytes[6:8] = readers_count.
func (l *SharedLock) MarshalBinary() [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint32(b[0:4], l.tail.Load())
	binary.LittleEndian.PutUint16(b[4:6], uint16(l.nextWriter.Load()))
	binary.LittleEndian.PutUint16(b[6:8], uint16(l.readersCount.Load()))
	return b
}

// UnmarshalBinary loads a SharedLock from its canonical layout.
func (l *SharedLock) UnmarshalBinary(b [8]byte) {
	l.tail.Store(binary.LittleEndian.Uint32(b[0:4]))
	l.nextWriter.Store(uint32(binary.LittleEndian.Uint16(b[4:6])))
	l.readersCount.Store(uint32(binary.LittleEndian.Uint16(b[6:8])))
}

// MarshalBinary writes the canonical 8-byte, little-endian wire layout of
// a VersionWord.
func (v VersionWord) MarshalBinary() [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return b
}

// UnmarshalVersionWord reads a VersionWord from its canonical layout.
func UnmarshalVersionWord(b [8]byte) VersionWord {
	return VersionWord(binary.LittleEndian.Uint64(b[:]))
}

// RecordHeader is the 16-byte {lock, version} pair stamped on every record:
// the first 8 bytes are an ExclusiveLock, the next 8 an AtomicVersionWord.
// Higher layers may write payload directly after the header; layout is
// ABI, 8-byte aligned.
type RecordHeader struct {
	Lock    ExclusiveLock
	Version AtomicVersionWord
}

// Reset zeroes both halves. Page-init path only.
func (h *RecordHeader) Reset() {
	h.Lock.Reset()
	h.Version.Store(0)
}

// NeedsTrackMoved reports whether the current version is moved or
// next-layer; callers must re-resolve the record's address and retry.
func (h *RecordHeader) NeedsTrackMoved() bool {
	return h.Version.Load().NeedsTrackMoved()
}

// MarshalBinary writes the canonical 16-byte layout: lock || version.
func (h *RecordHeader) MarshalBinary() [16]byte {
	var b [16]byte
	lock := h.Lock.MarshalBinary()
	ver := h.Version.Load().MarshalBinary()
	copy(b[0:8], lock[:])
	copy(b[8:16], ver[:])
	return b
}

// UnmarshalBinary loads a RecordHeader from its canonical layout.
func (h *RecordHeader) UnmarshalBinary(b [16]byte) {
	var lock [8]byte
	var ver [8]byte
	copy(lock[:], b[0:8])
	copy(ver[:], b[8:16])
	h.Lock.UnmarshalBinary(lock)
	h.Version.Store(UnmarshalVersionWord(ver))
}

// RwRecordHeader is the reader-writer-locked variant of RecordHeader,
// pairing a SharedLock instead of an ExclusiveLock with the same
// AtomicVersionWord semantics.
type RwRecordHeader struct {
	Lock    SharedLock
	Version AtomicVersionWord
}

// Reset zeroes both halves. Page-init path only.
func (h *RwRecordHeader) Reset() {
	h.Lock.Reset()
	h.Version.Store(0)
}

// NeedsTrackMoved reports whether the current version is moved or
// next-layer; callers must re-resolve the record's address and retry.
func (h *RwRecordHeader) NeedsTrackMoved() bool {
	return h.Version.Load().NeedsTrackMoved()
}

// TrackMovedRecordResult is the outcome of re-resolving a displaced
// record's address. Both fields are nil together when tracking fails.
type TrackMovedRecordResult struct {
	NewHeader  *RecordHeader
	NewPayload []byte
}

// Failed reports whether tracking could not locate the record's new
// address.
func (r TrackMovedRecordResult) Failed() bool {
	return r.NewHeader == nil && r.NewPayload == nil
}
