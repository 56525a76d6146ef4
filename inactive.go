package admitctl

import "container/list"

// InactiveRead is a capability registered by a reader that is admitted but
// currently not making progress (e.g. waiting on a downstream RPC). It lets
// the Semaphore reclaim the reader's resources under memory pressure instead
// of blocking new admissions behind an idle holder.
type InactiveRead interface {
	// Evict must cause the underlying reader to release its Permit
	// promptly. It is called at most once by the Semaphore's registry,
	// synchronously, after the entry has already been removed from the
	// registry — implementations must not call back into
	// RegisterInactiveRead for the same reader from within Evict.
	Evict()
}

// InactiveReadHandle indexes one registered InactiveRead. The zero
// InactiveReadHandle is the empty handle and refers to nothing; it is
// returned by RegisterInactiveRead when registration was short-circuited
// by an immediate eviction (see Semaphore.RegisterInactiveRead).
type InactiveReadHandle struct {
	id uint64
}

// IsZero reports whether h is the empty handle.
func (h InactiveReadHandle) IsZero() bool {
	return h.id == 0
}

// inactiveEntry pairs a registry id with the reader registered under it.
type inactiveEntry struct {
	id     uint64
	reader InactiveRead
}

// inactiveRegistry is an ordered id -> InactiveRead map, FIFO by
// registration order so the oldest (longest-idle) entry is always evicted
// first. It is not safe for concurrent use; Semaphore serializes all access
// with its own mutex, the same confinement discipline used for the wait
// queue.
type inactiveRegistry struct {
	order  list.List // of *inactiveEntry, oldest first
	byID   map[uint64]*list.Element
	nextID uint64 // pre-incremented so ids start at 1, leaving 0 as "empty"
}

// register inserts reader under a freshly minted id and returns its handle.
func (r *inactiveRegistry) register(reader InactiveRead) InactiveReadHandle {
	if r.byID == nil {
		r.byID = make(map[uint64]*list.Element)
	}
	r.nextID++
	id := r.nextID
	elem := r.order.PushBack(&inactiveEntry{id: id, reader: reader})
	r.byID[id] = elem
	return InactiveReadHandle{id: id}
}

// unregister removes and returns the reader for h, without evicting it. It
// reports false if h does not refer to a currently-registered entry.
func (r *inactiveRegistry) unregister(h InactiveReadHandle) (InactiveRead, bool) {
	elem, ok := r.byID[h.id]
	if !ok {
		return nil, false
	}
	delete(r.byID, h.id)
	r.order.Remove(elem)
	entry, _ := elem.Value.(*inactiveEntry)
	return entry.reader, true
}

// popOldest removes and returns the longest-registered reader, if any.
func (r *inactiveRegistry) popOldest() (InactiveRead, bool) {
	elem := r.order.Front()
	if elem == nil {
		return nil, false
	}
	r.order.Remove(elem)
	entry, _ := elem.Value.(*inactiveEntry)
	delete(r.byID, entry.id)
	return entry.reader, true
}

// len reports the number of currently registered readers.
func (r *inactiveRegistry) len() int {
	return r.order.Len()
}
