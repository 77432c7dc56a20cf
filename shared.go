package xctlock

import "sync/atomic"

// noNextWriter is the SharedLock sentinel meaning "no writer is waiting",
// spec.md §6's reserved 0xFFFF constant. It happens to equal GuestThreadID
// numerically; the two live in unrelated namespaces (ExclusiveLock's guest
// tail vs. SharedLock's next_writer field).
const noNextWriter ThreadID = 0xFFFF

// SharedLock is the reader-writer MCS lock word: a 32-bit tail (same
// encoding as ExclusiveLock), a 16-bit next-writer thread id (or
// noNextWriter), and a 16-bit reader count.
type SharedLock struct {
	tail         atomic.Uint32
	nextWriter   atomic.Uint32 // holds a ThreadID, or noNextWriter
	readersCount atomic.Uint32 // holds a uint16 count
}

// NewSharedLock returns a lock in the reset (unlocked) state.
func NewSharedLock() *SharedLock {
	l := &SharedLock{}
	l.Reset()
	return l
}

// Reset unconditionally returns the lock to the unlocked state. Page-init
// path only.
func (l *SharedLock) Reset() {
	l.tail.Store(0)
	l.nextWriter.Store(uint32(noNextWriter))
	l.readersCount.Store(0)
}

// IsLocked reports whether the lock is held or has queued waiters.
func (l *SharedLock) IsLocked() bool { return l.tail.Load() != 0 }

// ReadersCount returns the current reader count, for tests and diagnostics.
func (l *SharedLock) ReadersCount() uint16 { return uint16(l.readersCount.Load()) }

func (l *SharedLock) incReaders() { l.readersCount.Add(1) }

// decReaders decrements the reader count and returns its value before the
// decrement.
func (l *SharedLock) decReaders() uint16 {
	return uint16(l.readersCount.Add(^uint32(0)) + 1)
}

// ReaderAcquire queues ctx for read access, batching with an
// already-unblocked reader predecessor and joining the wait chain behind
// a writer or still-blocked reader predecessor otherwise (spec.md §4.2).
func (l *SharedLock) ReaderAcquire(ctx ExecutionContext) (SlotIndex, error) {
	idx, err := ctx.AcquireLocalSlot()
	if err != nil {
		return NoSlot, err
	}
	s := ctx.Slot(idx)
	s.resetShared(classReader)

	tid := ctx.ThreadID()
	self := tailOf(tid, idx)
	prevRaw := l.tail.Swap(self)
	if prevRaw == 0 {
		l.incReaders()
		s.sharedUnblock()
		l.propagateReaderChain(ctx, s)
		return idx, nil
	}

	ptid, pidx := untail(prevRaw)
	pred := ctx.PeerSlot(ptid, pidx)

	for {
		state, succ := pred.shared.load()
		blocked := state&sharedStateBlockedFlag != 0
		class := ownClass(state & sharedStateClassMask)
		if !blocked && class == classReader {
			// predecessor is an already-unblocked reader: join directly.
			l.incReaders()
			pred.successor.Store(uint32(packPeer(tid, idx)))
			s.sharedUnblock()
			l.propagateReaderChain(ctx, s)
			return idx, nil
		}
		// predecessor is a writer, or a reader that is itself still
		// queued: register as its reader successor atomically with its
		// (blocked, successor-class) pair, per the Fraser fix.
		if pred.shared.cas(state, succ, state, succClassReader) {
			break
		}
	}
	pred.successor.Store(uint32(packPeer(tid, idx)))

	for s.sharedIsBlocked() {
		spinWait()
	}
	l.propagateReaderChain(ctx, s)
	return idx, nil
}

// propagateReaderChain unblocks every reader queued immediately behind an
// already-unblocked reader s, incrementing the reader count for each one
// in turn (spec.md §4.2 step 6 / writer-release step 3).
func (l *SharedLock) propagateReaderChain(ctx ExecutionContext, s *WaiterSlot) {
	for s.sharedSuccessorClass() == succClassReader {
		succRaw := waitForSuccessor(s)
		p := peerRef(succRaw)
		next := ctx.PeerSlot(p.threadID(), p.slotIndex())
		l.incReaders()
		next.sharedUnblock()
		s = next
	}
}

func waitForSuccessor(s *WaiterSlot) uint32 {
	for {
		if v := s.successor.Load(); v != 0 {
			return v
		}
		spinWait()
	}
}

// ReaderRelease releases a read acquisition made via ReaderAcquire. If this
// was the last reader and a writer is waiting, hands the lock off to it.
//
// Unlike ExclusiveLock.Release and WriterRelease, the tail-or-successor
// check here cannot be keyed off this slot's own successor chain: readers
// batch (§4.2), so the reader whose release happens to bring readers_count
// to zero is not necessarily the one that was ever the chain tail; its own
// successor field may just be stale bookkeeping from an already-active
// reader further down the batch. Correctness instead rests on two lock-level
// facts: WriterAcquire unconditionally re-stamps the tail with its own
// identity regardless of what it found there, and it always records itself
// in nextWriter before blocking. So every releasing reader still checks
// whether it is still the tail, but the successor it waits for and hands off
// to is identified through nextWriter rather than through its own slot.
func (l *SharedLock) ReaderRelease(ctx ExecutionContext, idx SlotIndex) {
	self := tailOf(ctx.ThreadID(), idx)
	old := l.decReaders()

	if l.tail.CompareAndSwap(self, 0) {
		// Nobody had queued behind me: the lock is fully idle now. A writer
		// racing in after this check re-stamps the tail itself, so this can
		// never erase a genuinely waiting writer.
		ctx.ReleaseLocalSlot(idx)
		return
	}

	if old != 1 {
		// Other readers are still active; whatever is ahead of me in the
		// queue now is their problem to hand off to, not mine.
		ctx.ReleaseLocalSlot(idx)
		return
	}

	// I was the last active reader, but something joined the queue before
	// I could clear the tail. If it was a writer, it is discoverable via
	// nextWriter and sits at the current tail.
	nw := ThreadID(l.nextWriter.Load())
	if nw != noNextWriter {
		tailRaw := l.tail.Load()
		wtid, widx := untail(tailRaw)
		if wtid == nw {
			if l.nextWriter.CompareAndSwap(uint32(nw), uint32(noNextWriter)) {
				ctx.PeerSlot(wtid, widx).sharedUnblock()
			}
		}
	}
	ctx.ReleaseLocalSlot(idx)
}

// WriterAcquire queues ctx for exclusive write access, waiting for all
// prior readers and writers (spec.md §4.2).
func (l *SharedLock) WriterAcquire(ctx ExecutionContext) (SlotIndex, error) {
	idx, err := ctx.AcquireLocalSlot()
	if err != nil {
		return NoSlot, err
	}
	s := ctx.Slot(idx)
	s.resetShared(classWriter)

	tid := ctx.ThreadID()
	self := tailOf(tid, idx)
	prevRaw := l.tail.Swap(self)
	if prevRaw == 0 && l.readersCount.Load() == 0 {
		s.sharedUnblock()
		return idx, nil
	}

	l.nextWriter.Store(uint32(tid))
	if prevRaw != 0 {
		ptid, pidx := untail(prevRaw)
		pred := ctx.PeerSlot(ptid, pidx)
		for {
			state, succ := pred.shared.load()
			if pred.shared.cas(state, succ, state, succClassWriter) {
				break
			}
		}
		pred.successor.Store(uint32(packPeer(tid, idx)))
	}

	for s.sharedIsBlocked() {
		spinWait()
	}
	return idx, nil
}

// WriterRelease releases a write acquisition made via WriterAcquire,
// handing off to a registered successor (writer: directly; readers: as a
// batch, propagating down the reader chain) or clearing the tail if none
// has registered yet.
func (l *SharedLock) WriterRelease(ctx ExecutionContext, idx SlotIndex) {
	s := ctx.Slot(idx)
	self := tailOf(ctx.ThreadID(), idx)

	succClass := s.sharedSuccessorClass()
	if succClass == succClassNone {
		if l.tail.CompareAndSwap(self, 0) {
			ctx.ReleaseLocalSlot(idx)
			return
		}
		for s.sharedSuccessorClass() == succClassNone {
			spinWait()
		}
		succClass = s.sharedSuccessorClass()
	}

	succRaw := waitForSuccessor(s)
	p := peerRef(succRaw)
	succSlot := ctx.PeerSlot(p.threadID(), p.slotIndex())

	if succClass == succClassWriter {
		succSlot.sharedUnblock()
	} else {
		l.incReaders()
		succSlot.sharedUnblock()
		l.propagateReaderChain(ctx, succSlot)
	}
	ctx.ReleaseLocalSlot(idx)
}
