package admitctl

import (
	"runtime"
	"sync/atomic"
)

// Permit is an owning handle proving a reader has been admitted by a
// Semaphore and reserving the resources it was admitted with (its
// baseCost). Permit is a small value type that can be freely copied and
// passed around. Plain copies made by assignment refer to the same handle:
// releasing any one of them releases that handle's share, and releasing
// another copy afterwards is a no-op. Use Clone to create a separate share
// that must be released on its own (see below).
//
// The zero Permit is a valid no-op handle, used by callers that did not
// go through admission control (e.g. untracked readers). All operations on
// a zero Permit are inert.
type Permit struct {
	h *permitHandle
}

// permitHandle is the per-owner bookkeeping for a Permit. Several Permit
// values can share the same permitState (via Clone); each gets its own
// permitHandle so that double-Release of the *same* logical owner is a
// detectable no-op without affecting sibling owners.
type permitHandle struct {
	state    *permitState
	consumed atomic.Bool
}

// permitState is the resources shared by every clone of one logical
// admission. The last Release (refs reaching zero) credits baseCost back to
// the owning Semaphore exactly once.
type permitState struct {
	sem      *Semaphore
	baseCost Resources
	refs     atomic.Int32
}

// newPermit returns a ready Permit for resources already debited from sem
// (by WaitAdmission or ConsumeResources). newPermit itself performs no
// accounting; it only takes ownership of returning baseCost later.
func newPermit(sem *Semaphore, baseCost Resources) Permit {
	st := &permitState{sem: sem, baseCost: baseCost}
	st.refs.Store(1)
	h := &permitHandle{state: st}
	runtime.SetFinalizer(h, finalizeLeakedPermit)
	return Permit{h: h}
}

// finalizeLeakedPermit runs if a Permit handle is garbage collected without
// ever calling Release. It credits the resources back (so the Semaphore
// does not leak capacity forever) and logs a warning, since a permit that
// reaches the finalizer is almost always a caller bug.
func finalizeLeakedPermit(h *permitHandle) {
	if !h.consumed.CompareAndSwap(false, true) {
		return
	}
	if h.state.refs.Add(-1) == 0 {
		Logger().Warn("permit garbage-collected without Release; crediting its resources",
			"resources", h.state.baseCost, "semaphore", h.state.sem.name)
		h.state.sem.signal(h.state.baseCost)
	}
}

// IsZero reports whether p is the no-op zero Permit.
func (p Permit) IsZero() bool {
	return p.h == nil
}

// Clone returns a new Permit sharing the same underlying admission. The
// admission's baseCost is returned to the Semaphore only when every clone
// (including p) has been Released. Cloning a zero Permit returns another
// zero Permit.
func (p Permit) Clone() Permit {
	if p.h == nil {
		return Permit{}
	}
	p.h.state.refs.Add(1)
	h := &permitHandle{state: p.h.state}
	runtime.SetFinalizer(h, finalizeLeakedPermit)
	return Permit{h: h}
}

// Release returns this handle's share of the admission. Once every clone of
// the same admission has called Release, the reserved baseCost is credited
// back to the Semaphore and any waiters are woken. Release is idempotent:
// calling it again on the same handle (e.g. via both an explicit call and a
// deferred one) is a safe no-op and does not alter the Semaphore's
// resources a second time.
func (p Permit) Release() {
	if p.h == nil {
		return
	}
	if !p.h.consumed.CompareAndSwap(false, true) {
		return
	}
	runtime.SetFinalizer(p.h, nil)
	if p.h.state.refs.Add(-1) == 0 {
		p.h.state.sem.signal(p.h.state.baseCost)
	}
}

// GetMemoryUnits returns a MemoryUnits bound to the same Semaphore as p,
// debiting m bytes immediately. Calling GetMemoryUnits on a zero Permit
// returns a zero (no-op) MemoryUnits regardless of m.
func (p Permit) GetMemoryUnits(m int64) MemoryUnits {
	if p.h == nil {
		return MemoryUnits{}
	}
	return newMemoryUnits(p.h.state.sem, m)
}
