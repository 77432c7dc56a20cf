package xctlock

import (
	"runtime"
	"sync/atomic"
)

// guestTail is the reserved 32-bit tail value marking an ownerless holder:
// both the thread-id and slot-index halves read as all-ones, so it can
// never collide with a real (thread_id, slot_index) pair so long as real
// slot indexes stay below 0xFFFF.
const guestTail uint32 = 0xFFFFFFFF

// ExclusiveLock is the 64-bit lock word stamped into every RecordHeader's
// first 8 bytes: a 32-bit tail (thread_id:16, slot_index:16, little-endian,
// zero = unlocked) followed by a 32-bit word repurposed, per DESIGN.md, as
// a diagnostics-only owner generation counter. Correctness paths never
// read debugGen.
type ExclusiveLock struct {
	tail     atomic.Uint32
	debugGen atomic.Uint32
}

// IsLocked reports whether the lock is currently held, by anyone (queued
// or ownerless).
func (l *ExclusiveLock) IsLocked() bool {
	return l.tail.Load() != 0
}

// Reset unconditionally zeroes the lock. Page-init path only; callers must
// ensure no other thread can observe this lock concurrently.
func (l *ExclusiveLock) Reset() {
	l.tail.Store(0)
	l.debugGen.Store(0)
}

// ResetGuestIDRelease initializes the lock directly into the
// ownerless-held state with a release-ordered store, skipping the CAS that
// OwnerlessAcquire would otherwise perform. Page-init path only, mirroring
// the original's dedicated ownerless-reset entry point: used when a page is
// published already held by a background/ownerless thread rather than
// acquired after the fact, e.g. a SlotPool dedicated to background threads
// that seeds every lock it owns straight into the ownerless state.
func (l *ExclusiveLock) ResetGuestIDRelease() {
	l.tail.Store(guestTail)
	l.debugGen.Store(0)
}

func tailOf(tid ThreadID, idx SlotIndex) uint32 {
	return uint32(tid)<<16 | uint32(idx)
}

func untail(tail uint32) (ThreadID, SlotIndex) {
	return ThreadID(tail >> 16), SlotIndex(tail & 0xFFFF)
}

// Acquire enqueues ctx's next free slot onto the lock's tail and spins on
// that slot's local blocked flag until the predecessor clears it. Returns
// the slot index the caller must pass to Release. The algorithm (spec.md
// §4.1):
//
//  1. take a free local slot s, successor = 0
//  2. prev := atomic_exchange(tail, (self, s))
//  3. if prev == 0, acquired
//  4. else block, publish (self, s) into prev's successor, spin on blocked
//
// A guest holder (see OwnerlessAcquire) has no waiter slot to link behind,
// so step 2 is a CAS loop rather than a bare exchange: a tail value of
// guestTail is never overwritten by a queued acquirer, only waited out.
func (l *ExclusiveLock) Acquire(ctx ExecutionContext) (SlotIndex, error) {
	idx, err := ctx.AcquireLocalSlot()
	if err != nil {
		return NoSlot, err
	}
	s := ctx.Slot(idx)
	s.resetExclusive()

	self := tailOf(ctx.ThreadID(), idx)
	var prev uint32
	for {
		prev = l.tail.Load()
		if prev == guestTail {
			spinWait()
			continue
		}
		if l.tail.CompareAndSwap(prev, self) {
			break
		}
	}
	if prev == 0 {
		return idx, nil
	}

	s.blocked.Store(true)
	ptid, pidx := untail(prev)
	pred := ctx.PeerSlot(ptid, pidx)
	pred.successor.Store(uint32(packPeer(ctx.ThreadID(), idx)))

	for s.blocked.Load() {
		spinWait()
	}
	return idx, nil
}

// InitialAcquire is identical to Acquire but writes the tail with a plain
// store instead of the CAS loop and never links behind a predecessor, so it
// is permitted only when the lock is provably uncontended, e.g. page
// initialization before publication. Per spec.md §4.1/§9, a rewrite should
// either statically distinguish this path (it is a separate method here)
// or runtime debug-assert the lock is unlocked; this implementation does
// the latter.
func (l *ExclusiveLock) InitialAcquire(ctx ExecutionContext) (SlotIndex, error) {
	assertNd(l.tail.Load() == 0, "InitialAcquire: lock must be uncontended")
	idx, err := ctx.AcquireLocalSlot()
	if err != nil {
		return NoSlot, err
	}
	s := ctx.Slot(idx)
	s.successor.Store(0)
	s.blocked.Store(false)
	l.tail.Store(tailOf(ctx.ThreadID(), idx))
	l.debugGen.Add(1)
	return idx, nil
}

// Release releases the lock previously acquired via Acquire/InitialAcquire
// at slot index idx. Algorithm (spec.md §4.1):
//
//  1. if slot has a successor, clear its blocked flag (release-ordered)
//  2. else CAS tail from (self, s) to 0; on failure, spin until the racing
//     linker publishes its identity, then do step 1
func (l *ExclusiveLock) Release(ctx ExecutionContext, idx SlotIndex) {
	s := ctx.Slot(idx)
	self := tailOf(ctx.ThreadID(), idx)

	for {
		if succ := s.successor.Load(); succ != 0 {
			p := peerRef(succ)
			peer := ctx.PeerSlot(p.threadID(), p.slotIndex())
			peer.blocked.Store(false)
			ctx.ReleaseLocalSlot(idx)
			return
		}
		if l.tail.CompareAndSwap(self, 0) {
			ctx.ReleaseLocalSlot(idx)
			return
		}
		spinWait()
	}
}

// OwnerlessAcquire acquires the lock for a background thread with no slot
// pool, using the reserved guest id. Cannot coexist with queued waiters:
// if any thread is already queued (tail != 0, even mid-handoff), this
// spins until the lock is entirely free.
func (l *ExclusiveLock) OwnerlessAcquire() {
	for !l.tail.CompareAndSwap(0, guestTail) {
		spinWait()
	}
}

// OwnerlessRelease releases a lock held via OwnerlessAcquire.
func (l *ExclusiveLock) OwnerlessRelease() {
	assertNd(l.tail.Load() == guestTail, "OwnerlessRelease: lock must be ownerless-held")
	l.tail.CompareAndSwap(guestTail, 0)
}

// spinWait is the bounded local spin used by every wait in this package.
// spec.md §5 targets OS threads pinned to cores with no cooperative yields
// inside acquire/release; on Go's M:N scheduler a goroutine that never
// yields can starve the very peer it is waiting on when GOMAXPROCS is
// small, so this spin calls runtime.Gosched() between attempts, the same
// choice the pack's ahrav-go-locks/mcs.go MCS lock makes for the same
// reason.
func spinWait() {
	runtime.Gosched()
}
