package xctlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopedAcquisitionAcquireAndRelease(t *testing.T) {
	reg := NewRegistry()
	ctx := NewSlotPool(reg, ThreadID(1), WithCapacity(4))
	var lock ExclusiveLock

	s, err := NewScopedAcquisition(ctx, &lock, true, false)
	require.NoError(t, err)
	assert.True(t, s.IsValid())
	assert.True(t, s.IsLocked())
	assert.True(t, lock.IsLocked())

	s.Release()
	assert.False(t, s.IsLocked())
	assert.False(t, lock.IsLocked())

	// Release is idempotent.
	s.Release()
	assert.False(t, s.IsLocked())
}

func TestScopedAcquisitionReleaseOnEveryExitPath(t *testing.T) {
	reg := NewRegistry()
	ctx := NewSlotPool(reg, ThreadID(1), WithCapacity(4))
	var lock ExclusiveLock

	func() {
		s, err := NewScopedAcquisition(ctx, &lock, true, false)
		require.NoError(t, err)
		defer s.Release()
		assert.True(t, lock.IsLocked())
	}()

	assert.False(t, lock.IsLocked())
}

func TestScopedAcquisitionMoveTransfersOwnershipAndZeroesSource(t *testing.T) {
	reg := NewRegistry()
	ctx := NewSlotPool(reg, ThreadID(1), WithCapacity(4))
	var lock ExclusiveLock

	src, err := NewScopedAcquisition(ctx, &lock, true, false)
	require.NoError(t, err)

	var dst ScopedAcquisition
	src.Move(&dst)

	assert.False(t, src.IsValid())
	assert.False(t, src.IsLocked())
	assert.True(t, dst.IsValid())
	assert.True(t, dst.IsLocked())

	dst.Release()
	assert.False(t, lock.IsLocked())
}

func TestScopedAcquisitionMoveToStructuralPageVersionScope(t *testing.T) {
	reg := NewRegistry()
	ctx := NewSlotPool(reg, ThreadID(1), WithCapacity(4))
	var lock ExclusiveLock

	src, err := NewScopedAcquisition(ctx, &lock, true, false)
	require.NoError(t, err)

	var dst StructuralPageVersionScope
	src.MoveTo(&dst)

	assert.False(t, src.IsValid())
	assert.True(t, dst.adopted.IsLocked())

	dst.adopted.Release()
	assert.False(t, lock.IsLocked())
}

func TestScopedAcquisitionArmedButNotAcquired(t *testing.T) {
	reg := NewRegistry()
	ctx := NewSlotPool(reg, ThreadID(1), WithCapacity(4))
	var lock ExclusiveLock

	s, err := NewScopedAcquisition(ctx, &lock, false, false)
	require.NoError(t, err)
	assert.True(t, s.IsValid())
	assert.False(t, s.IsLocked())

	require.NoError(t, s.Acquire(false))
	assert.True(t, s.IsLocked())
	s.Release()
}

func TestScopedSharedAcquisitionReaderAndWriter(t *testing.T) {
	reg := NewRegistry()
	readerCtx := NewSlotPool(reg, ThreadID(1), WithCapacity(4))
	writerCtx := NewSlotPool(reg, ThreadID(2), WithCapacity(4))
	lock := NewSharedLock()

	r, err := NewScopedSharedAcquisition(readerCtx, lock, true, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, lock.ReadersCount())
	r.Release()
	assert.EqualValues(t, 0, lock.ReadersCount())

	w, err := NewScopedSharedAcquisition(writerCtx, lock, false, true)
	require.NoError(t, err)
	assert.True(t, lock.IsLocked())
	w.Release()
	assert.False(t, lock.IsLocked())
}

func TestScopedSharedAcquisitionMoveToAdoptsIntoStructuralScope(t *testing.T) {
	reg := NewRegistry()
	ctx := NewSlotPool(reg, ThreadID(1), WithCapacity(4))
	lock := NewSharedLock()

	s, err := NewScopedSharedAcquisition(ctx, lock, true, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, lock.ReadersCount())

	var dst StructuralPageVersionScope
	s.MoveTo(&dst)

	assert.False(t, s.IsValid())
	assert.True(t, dst.adoptedShared.IsValid())
	assert.True(t, dst.adoptedShared.IsLocked())

	dst.adoptedShared.Release()
	assert.EqualValues(t, 0, lock.ReadersCount())
}

func TestOwnerlessScopeAcquireRelease(t *testing.T) {
	var lock ExclusiveLock
	s := NewOwnerlessScope(&lock, true)
	assert.True(t, s.IsLockedByMe())
	assert.True(t, lock.IsLocked())

	s.Release()
	assert.False(t, s.IsLockedByMe())
	assert.False(t, lock.IsLocked())
}
