package xctlock

// noCopy, embedded by value, causes `go vet -copylocks` to flag accidental
// copies of a scope that holds a live acquisition. Grounded in the
// standard library's own unexported convention and used the same way by
// the pack's llxisdsh-synx lock types.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// ScopedAcquisition is an RAII-style handle owning at most one
// ExclusiveLock acquisition. Release is guaranteed on every exit path by
// calling Release in a defer; the zero value owns nothing. ScopedAcquisition
// is move-only: use Move to transfer ownership, never copy a value that may
// be holding a lock (go vet flags accidental copies via noCopy).
type ScopedAcquisition struct {
	_ noCopy

	ctx  ExecutionContext
	lock *ExclusiveLock
	slot SlotIndex // NoSlot when not held
}

// NewScopedAcquisition constructs a scope for lock under ctx. If
// acquireNow is true it acquires immediately (via the queued path, or via
// InitialAcquire if nonRacy is set — only safe when the lock is provably
// uncontended). If acquireNow is false the scope is armed but not holding;
// call Acquire later.
func NewScopedAcquisition(ctx ExecutionContext, lock *ExclusiveLock, acquireNow, nonRacy bool) (*ScopedAcquisition, error) {
	s := &ScopedAcquisition{ctx: ctx, lock: lock}
	if acquireNow {
		if err := s.Acquire(nonRacy); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// IsValid reports whether this scope refers to a lock at all.
func (s *ScopedAcquisition) IsValid() bool { return s.lock != nil }

// IsLocked reports whether this scope currently holds the lock.
func (s *ScopedAcquisition) IsLocked() bool { return s.slot != NoSlot }

// Acquire acquires the lock. A no-op if already held or !IsValid().
func (s *ScopedAcquisition) Acquire(nonRacy bool) error {
	if !s.IsValid() || s.IsLocked() {
		return nil
	}
	var idx SlotIndex
	var err error
	if nonRacy {
		idx, err = s.lock.InitialAcquire(s.ctx)
	} else {
		idx, err = s.lock.Acquire(s.ctx)
	}
	if err != nil {
		return err
	}
	s.slot = idx
	return nil
}

// Release releases the lock if held. A no-op if not held or !IsValid().
func (s *ScopedAcquisition) Release() {
	if !s.IsValid() || !s.IsLocked() {
		return
	}
	s.lock.Release(s.ctx, s.slot)
	s.slot = NoSlot
}

// Move transfers ownership of this acquisition to dst, which must not
// currently hold an acquisition of its own, and zeroes the source so only
// one scope may ever release it.
func (s *ScopedAcquisition) Move(dst *ScopedAcquisition) {
	assertNd(!dst.IsLocked(), "Move: destination must not already hold a lock")
	dst.ctx = s.ctx
	dst.lock = s.lock
	dst.slot = s.slot
	s.ctx = nil
	s.lock = nil
	s.slot = NoSlot
}

// StructuralPageVersionScope is the only external collaborator authorised
// to adopt an in-flight ScopedAcquisition or ScopedSharedAcquisition
// mid-operation (spec.md §4.5); it is a minimal stand-in for the
// page-version scope of the (out-of-scope) storage layer, existing only so
// MoveTo has something real to hand off to.
type StructuralPageVersionScope struct {
	adopted       ScopedAcquisition
	adoptedShared ScopedSharedAcquisition
}

// MoveTo hands ownership of s to a structural-page-version scope, zeroing
// s.
func (s *ScopedAcquisition) MoveTo(dst *StructuralPageVersionScope) {
	s.Move(&dst.adopted)
}

// ScopedSharedAcquisition is the reader-writer analogue of
// ScopedAcquisition, additionally tracking whether it was acquired for
// reading or writing.
type ScopedSharedAcquisition struct {
	_ noCopy

	ctx      ExecutionContext
	lock     *SharedLock
	slot     SlotIndex
	asReader bool
}

// NewScopedSharedAcquisition constructs a scope for lock under ctx as a
// reader (asReader) or writer. If acquireNow is true it acquires
// immediately.
func NewScopedSharedAcquisition(ctx ExecutionContext, lock *SharedLock, asReader, acquireNow bool) (*ScopedSharedAcquisition, error) {
	s := &ScopedSharedAcquisition{ctx: ctx, lock: lock, asReader: asReader}
	if acquireNow {
		if err := s.Acquire(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// IsValid reports whether this scope refers to a lock at all.
func (s *ScopedSharedAcquisition) IsValid() bool { return s.lock != nil }

// IsLocked reports whether this scope currently holds the lock.
func (s *ScopedSharedAcquisition) IsLocked() bool { return s.slot != NoSlot }

// Acquire acquires the lock in this scope's discipline (reader or writer).
// A no-op if already held or !IsValid().
func (s *ScopedSharedAcquisition) Acquire() error {
	if !s.IsValid() || s.IsLocked() {
		return nil
	}
	var idx SlotIndex
	var err error
	if s.asReader {
		idx, err = s.lock.ReaderAcquire(s.ctx)
	} else {
		idx, err = s.lock.WriterAcquire(s.ctx)
	}
	if err != nil {
		return err
	}
	s.slot = idx
	return nil
}

// Release releases the lock if held. A no-op if not held or !IsValid().
func (s *ScopedSharedAcquisition) Release() {
	if !s.IsValid() || !s.IsLocked() {
		return
	}
	if s.asReader {
		s.lock.ReaderRelease(s.ctx, s.slot)
	} else {
		s.lock.WriterRelease(s.ctx, s.slot)
	}
	s.slot = NoSlot
}

// Move transfers ownership to dst and zeroes the source.
func (s *ScopedSharedAcquisition) Move(dst *ScopedSharedAcquisition) {
	assertNd(!dst.IsLocked(), "Move: destination must not already hold a lock")
	dst.ctx = s.ctx
	dst.lock = s.lock
	dst.slot = s.slot
	dst.asReader = s.asReader
	s.ctx = nil
	s.lock = nil
	s.slot = NoSlot
}

// MoveTo hands ownership of s to a structural-page-version scope, zeroing
// s.
func (s *ScopedSharedAcquisition) MoveTo(dst *StructuralPageVersionScope) {
	s.Move(&dst.adoptedShared)
}

// OwnerlessScope acquires an ExclusiveLock with no execution context, for
// background threads without a slot pool. It records only whether this
// scope is the one that acquired the lock (locked_by_me), since there is
// no slot to release.
type OwnerlessScope struct {
	_ noCopy

	lock       *ExclusiveLock
	lockedByMe bool
}

// NewOwnerlessScope constructs a scope for lock. If acquireNow is true it
// acquires immediately.
func NewOwnerlessScope(lock *ExclusiveLock, acquireNow bool) *OwnerlessScope {
	s := &OwnerlessScope{lock: lock}
	if acquireNow {
		s.Acquire()
	}
	return s
}

// IsValid reports whether this scope refers to a lock at all.
func (s *OwnerlessScope) IsValid() bool { return s.lock != nil }

// IsLockedByMe reports whether this scope is holding the lock.
func (s *OwnerlessScope) IsLockedByMe() bool { return s.lockedByMe }

// Acquire acquires the lock via the ownerless path. A no-op if already
// held by this scope or !IsValid().
func (s *OwnerlessScope) Acquire() {
	if !s.IsValid() || s.lockedByMe {
		return
	}
	s.lock.OwnerlessAcquire()
	s.lockedByMe = true
}

// Release releases the lock if held by this scope.
func (s *OwnerlessScope) Release() {
	if !s.IsValid() || !s.lockedByMe {
		return
	}
	s.lock.OwnerlessRelease()
	s.lockedByMe = false
}
