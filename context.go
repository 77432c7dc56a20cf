package xctlock

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ExecutionContext is the interface the lock family needs from a worker
// thread's registry entry: a way to grab an unused local slot, access that
// slot, access a peer's slot by (thread id, slot index), and report this
// thread's own id. Bootstrapping, scheduling, and thread registration are
// out of scope for this package; any type satisfying this interface can be
// used.
type ExecutionContext interface {
	// AcquireLocalSlot returns an unused slot from this context's pool.
	// Returns ErrSlotPoolExhausted if the pool's ceiling is reached.
	AcquireLocalSlot() (SlotIndex, error)
	// ReleaseLocalSlot returns a slot to the pool once its thread has been
	// unblocked and has returned from the operation that queued it.
	ReleaseLocalSlot(SlotIndex)
	// Slot returns this context's own slot at the given index.
	Slot(SlotIndex) *WaiterSlot
	// PeerSlot returns another thread's slot at the given index.
	PeerSlot(ThreadID, SlotIndex) *WaiterSlot
	// ThreadID returns this context's thread id.
	ThreadID() ThreadID
}

// SlotPool is a per-execution-context, pre-allocated pool of WaiterSlots
// indexed by a small integer. Slots are never freed once allocated to the
// pool's arena; "releasing" a slot only returns it to the free list for
// reuse by the same thread on its next acquire.
//
// A SlotPool is meant to be owned by exactly one worker thread: concurrent
// calls to AcquireLocalSlot/ReleaseLocalSlot from multiple goroutines on the
// same pool are not supported, matching the "a thread occupies at most one
// slot across all locks at any instant" invariant in the data model.
type SlotPool struct {
	tid   ThreadID
	slots []WaiterSlot
	// free is a simple free-list stack of indexes above the watermark.
	free      []SlotIndex
	watermark SlotIndex

	registry *Registry

	log           zerolog.Logger
	capacityHint  int
	ownerlessOnly bool
}

// Registry resolves a ThreadID to the SlotPool that owns it, the minimal
// stand-in for the engine's worker-thread registry referenced in spec.md
// §1 as an opaque external collaborator. Production engines will have a
// richer thread registry; tests and small programs can use this one.
type Registry struct {
	pools atomic.Pointer[map[ThreadID]*SlotPool]
}

// NewRegistry returns an empty thread registry.
func NewRegistry() *Registry {
	r := &Registry{}
	m := make(map[ThreadID]*SlotPool)
	r.pools.Store(&m)
	return r
}

func (r *Registry) register(p *SlotPool) {
	for {
		old := r.pools.Load()
		next := make(map[ThreadID]*SlotPool, len(*old)+1)
		for k, v := range *old {
			next[k] = v
		}
		next[p.tid] = p
		if r.pools.CompareAndSwap(old, &next) {
			return
		}
	}
}

func (r *Registry) lookup(tid ThreadID) *SlotPool {
	m := r.pools.Load()
	return (*m)[tid]
}

// SlotPoolOption configures a SlotPool at construction. This follows the
// functional-options shape used throughout the pack's library constructors
// (e.g. ahrav-go-locks' mcs.NewLock()) rather than a parsed-config file,
// since slot-pool capacity is a per-call tuning knob, not deployment
// configuration.
type SlotPoolOption func(*SlotPool)

// WithLogger attaches a structured logger used only for pool-exhaustion
// diagnostics, never on the acquire/release hot path.
func WithLogger(l zerolog.Logger) SlotPoolOption {
	return func(p *SlotPool) { p.log = l }
}

// DefaultSlotPoolCapacity is the default ceiling on pre-allocated slots per
// thread, matching spec.md §9's "fixed ceiling (e.g. 2^16)" note, scaled
// down to something reasonable to allocate eagerly by default.
const DefaultSlotPoolCapacity = 1024

// WithCapacity overrides the number of slots pre-allocated for this thread.
// Must be less than 1<<16 (SlotIndex is 16 bits and 0 is reserved).
func WithCapacity(n int) SlotPoolOption {
	return func(p *SlotPool) {
		if n > 0 && n < int(NoSlot)+1<<16 {
			p.capacityHint = n
		}
	}
}

// WithOwnerlessOnly marks a pool as dedicated to a background/ownerless
// thread: one that only ever touches locks via OwnerlessAcquire/
// OwnerlessRelease and never queues a real waiter. Such a pool still gets a
// slot arena (AcquireLocalSlot is part of the ExecutionContext contract),
// but InitOwnerlessLock becomes available to seed a lock straight into the
// ownerless-held state at construction time via
// ExclusiveLock.ResetGuestIDRelease, rather than acquiring it after the
// fact.
func WithOwnerlessOnly() SlotPoolOption {
	return func(p *SlotPool) { p.ownerlessOnly = true }
}

// InitOwnerlessLock seeds lock directly into the ownerless-held state. Only
// valid for a pool constructed WithOwnerlessOnly; page-init path only,
// under the same "no concurrent observer" requirement as Reset.
func (p *SlotPool) InitOwnerlessLock(lock *ExclusiveLock) {
	assertNd(p.ownerlessOnly, "InitOwnerlessLock: pool must be constructed WithOwnerlessOnly")
	lock.ResetGuestIDRelease()
}

// NewSlotPool allocates a slot pool for thread tid, registers it in r, and
// returns it. Slot index 0 is reserved ("no slot") so the arena holds
// capacity+1 entries.
func NewSlotPool(r *Registry, tid ThreadID, opts ...SlotPoolOption) *SlotPool {
	p := &SlotPool{
		tid:          tid,
		registry:     r,
		log:          zerolog.Nop(),
		capacityHint: DefaultSlotPoolCapacity,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.slots = make([]WaiterSlot, p.capacityHint+1)
	for i := range p.slots {
		p.slots[i].index = SlotIndex(i)
	}
	p.free = make([]SlotIndex, 0, p.capacityHint)
	for i := p.capacityHint; i >= 1; i-- {
		p.free = append(p.free, SlotIndex(i))
	}
	if r != nil {
		r.register(p)
	}
	return p
}

// AcquireLocalSlot implements ExecutionContext.
func (p *SlotPool) AcquireLocalSlot() (SlotIndex, error) {
	if len(p.free) == 0 {
		p.log.Warn().Uint16("thread_id", uint16(p.tid)).Int("capacity", p.capacityHint).
			Msg("slot pool exhausted")
		return NoSlot, ErrSlotPoolExhausted
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return idx, nil
}

// ReleaseLocalSlot implements ExecutionContext.
func (p *SlotPool) ReleaseLocalSlot(idx SlotIndex) {
	p.free = append(p.free, idx)
}

// Slot implements ExecutionContext.
func (p *SlotPool) Slot(idx SlotIndex) *WaiterSlot { return &p.slots[idx] }

// PeerSlot implements ExecutionContext.
func (p *SlotPool) PeerSlot(tid ThreadID, idx SlotIndex) *WaiterSlot {
	peer := p.registry.lookup(tid)
	if peer == nil {
		return nil
	}
	return peer.Slot(idx)
}

// ThreadID implements ExecutionContext.
func (p *SlotPool) ThreadID() ThreadID { return p.tid }
