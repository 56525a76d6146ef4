// Package waitqueue implements a generic FIFO wait list with O(1) removal
// by identity, the data structure admitctl's Semaphore uses to queue
// admission requests that cannot be satisfied immediately.
//
// The design is grounded on golang.org/x/sync/semaphore's Weighted type: a
// container/list of waiters, each exposing a channel that is closed exactly
// once to signal completion, removable from the list in O(1) via its own
// *list.Element when a deadline or context is canceled. This package
// generalizes that idea from a single scalar weight to an arbitrary
// resource type, and separates "queued resource request" (R) from "what the
// waiter receives on success" (T) so callers are not forced into a single
// concrete payload type.
package waitqueue

import (
	"container/list"
	"sync/atomic"
)

// Waiter is one queued entry. Exactly one of Complete or Fail succeeds;
// whichever call wins closes Done's channel and the loser is told it lost.
type Waiter[R any, T any] struct {
	// Resources is the amount this waiter requested. Read-only after
	// PushBack; callers (e.g. Semaphore.hasAvailableUnits) inspect it to
	// decide whether the head of the queue can be woken.
	Resources R

	elem  *list.Element
	done  chan struct{}
	fired atomic.Bool
	value T
	err   error
}

// Done returns a channel that is closed once the waiter is resolved, either
// by Complete, by Fail, or by the queue entry being removed and resolved
// externally.
func (w *Waiter[R, T]) Done() <-chan struct{} {
	return w.done
}

// Result returns the waiter's resolution. It must only be called after Done
// has been closed.
func (w *Waiter[R, T]) Result() (T, error) {
	return w.value, w.err
}

// Complete resolves w successfully with value. Returns false if w was
// already resolved by a concurrent Complete/Fail (e.g. a timeout firing at
// the same moment a wake loop reaches this waiter) — the caller that loses
// the race must undo any resources it tentatively committed to w.
func (w *Waiter[R, T]) Complete(value T) bool {
	if !w.fired.CompareAndSwap(false, true) {
		return false
	}
	w.value = value
	close(w.done)
	return true
}

// Fail resolves w with err. Returns false if w was already resolved.
func (w *Waiter[R, T]) Fail(err error) bool {
	if !w.fired.CompareAndSwap(false, true) {
		return false
	}
	w.err = err
	close(w.done)
	return true
}

// Queue is a FIFO of Waiters. It is not safe for concurrent use by multiple
// goroutines; the owner (admitctl.Semaphore) serializes all access with its
// own mutex, the same confinement discipline the original single-threaded
// implementation relied on for its wait list.
type Queue[R any, T any] struct {
	l list.List
}

// PushBack enqueues and returns a new Waiter for res.
func (q *Queue[R, T]) PushBack(res R) *Waiter[R, T] {
	w := &Waiter[R, T]{Resources: res, done: make(chan struct{})}
	w.elem = q.l.PushBack(w)
	return w
}

// Front returns the head waiter without removing it, or nil if empty.
func (q *Queue[R, T]) Front() *Waiter[R, T] {
	e := q.l.Front()
	if e == nil {
		return nil
	}
	return e.Value.(*Waiter[R, T]) //nolint:forcetypeassert // only this package inserts elements
}

// PopFront removes and returns the head waiter, or nil if empty.
func (q *Queue[R, T]) PopFront() *Waiter[R, T] {
	e := q.l.Front()
	if e == nil {
		return nil
	}
	q.l.Remove(e)
	w := e.Value.(*Waiter[R, T]) //nolint:forcetypeassert // only this package inserts elements
	w.elem = nil
	return w
}

// Remove removes w from the queue in O(1) without disturbing the relative
// order of the remaining waiters. A no-op if w was already removed (e.g.
// concurrently popped by a wake loop racing a timeout).
func (q *Queue[R, T]) Remove(w *Waiter[R, T]) {
	if w.elem == nil {
		return
	}
	q.l.Remove(w.elem)
	w.elem = nil
}

// Len reports the number of queued waiters.
func (q *Queue[R, T]) Len() int {
	return q.l.Len()
}
