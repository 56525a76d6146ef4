package admitctl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shardfs/admitctl/internal/waitqueue"
)

// Stats is a snapshot of a Semaphore's bookkeeping counters.
type Stats struct {
	// Population is the number of currently registered inactive reads.
	Population int
	// PermitBasedEvictions is the running total of evictions performed,
	// whether triggered by admission pressure, TryEvictOneInactiveRead, or
	// a short-circuited RegisterInactiveRead.
	PermitBasedEvictions int64
}

// admitResult is what a queued WaitAdmission waiter receives on success.
type admitResult struct {
	permit Permit
}

// Semaphore is a two-dimensional admission-control gate: a hard cap on
// concurrent reader slots and a soft cap on memory bytes. It is intended to
// be confined to a single goroutine's workload per instance (mirroring a
// per-shard reactor), though an internal mutex makes accidental
// cross-goroutine use safe rather than corrupting: see the package-level
// concurrency notes in doc.go.
type Semaphore struct {
	mu sync.Mutex

	name           string
	capacity       Resources
	available      Resources
	maxQueueLength int
	prethrow       func()

	waitList waitqueue.Queue[Resources, admitResult]
	inactive inactiveRegistry

	closed               bool
	permitBasedEvictions int64
}

// New constructs a Semaphore from cfg, panicking if cfg is invalid. This
// matches the teacher's "fail fast at construction, invalid config is a
// programmer error" stance rather than returning a constructor error.
func New(cfg Config) *Semaphore {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("admitctl: invalid Config: %v", err))
	}
	return &Semaphore{
		name:           cfg.Name,
		capacity:       Resources{Count: cfg.Count, Memory: cfg.Memory},
		available:      Resources{Count: cfg.Count, Memory: cfg.Memory},
		maxQueueLength: cfg.MaxQueueLength,
		prethrow:       cfg.PrethrowAction,
	}
}

// NewWithOptions builds a Semaphore by layering opts over defaultConfig(),
// the same pattern the teacher's root package uses for ManagerOption.
func NewWithOptions(opts ...Option) *Semaphore {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg)
}

// WaitAdmission requests admission for one reader estimated to need memory
// bytes. It returns a ready Permit immediately if capacity allows (after
// evicting inactive reads to make room), or blocks until admitted, the
// deadline elapses, or ctx is canceled.
//
// A zero deadline means no deadline; the call can still be interrupted via
// ctx.
func (s *Semaphore) WaitAdmission(ctx context.Context, memory int64, deadline time.Time) (Permit, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return Permit{}, ErrSemaphoreClosed
	}

	r := Resources{Count: 1, Memory: memory}

	if s.waitList.Len() >= s.maxQueueLength {
		prethrow := s.prethrow
		s.mu.Unlock()
		if prethrow != nil {
			prethrow()
		}
		return Permit{}, fmt.Errorf("%w: %s", ErrQueueOverload, s.name)
	}

	for !mayProceed(s.available, r) && s.inactive.len() != 0 {
		s.evictOldestLocked()
	}

	if mayProceed(s.available, r) {
		s.available = s.available.Sub(r)
		s.checkSlotInvariantLocked()
		s.mu.Unlock()
		Logger().Debug("admission granted immediately", "semaphore", s.name, "resources", r)
		return newPermit(s, r), nil
	}

	waiter := s.waitList.PushBack(r)
	s.mu.Unlock()
	Logger().Debug("admission queued", "semaphore", s.name, "resources", r)

	return s.awaitWaiter(ctx, waiter, deadline)
}

// awaitWaiter blocks until waiter resolves, a deadline elapses, or ctx is
// canceled, removing the waiter from the queue in the latter two cases.
func (s *Semaphore) awaitWaiter(ctx context.Context, waiter *waitqueue.Waiter[Resources, admitResult], deadline time.Time) (Permit, error) {
	var timerC <-chan time.Time
	if !deadline.IsZero() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		timerC = timer.C
	}

	select {
	case <-waiter.Done():
		res, err := waiter.Result()
		if err != nil {
			return Permit{}, err
		}
		return res.permit, nil
	case <-timerC:
		s.mu.Lock()
		s.waitList.Remove(waiter)
		s.mu.Unlock()
		waiter.Fail(ErrAdmissionTimeout)
		// A concurrent signal may have already completed the waiter between
		// the timer firing and acquiring the lock; in that case Fail lost
		// the race and Result below reflects the real outcome.
		res, err := waiter.Result()
		if err != nil {
			return Permit{}, err
		}
		return res.permit, nil
	case <-ctx.Done():
		s.mu.Lock()
		s.waitList.Remove(waiter)
		s.mu.Unlock()
		waiter.Fail(ctx.Err())
		res, err := waiter.Result()
		if err != nil {
			return Permit{}, err
		}
		return res.permit, nil
	}
}

// ConsumeResources unconditionally debits r and returns a ready Permit,
// with no admission check. It is the fast path for callers that have
// already reserved r out of band (e.g. a fixed startup reservation).
func (s *Semaphore) ConsumeResources(r Resources) Permit {
	s.mu.Lock()
	s.available = s.available.Sub(r)
	s.checkSlotInvariantLocked()
	s.mu.Unlock()
	return newPermit(s, r)
}

// checkSlotInvariantLocked panics if available.Count has gone negative.
// Callers must hold s.mu. A negative slot count means some caller released
// more slots than it ever acquired, or debited without a matching credit —
// a programming error, not a condition callers can recover from, so this
// is a fatal invariant violation rather than an error return.
func (s *Semaphore) checkSlotInvariantLocked() {
	if s.available.Count < 0 {
		panic(fmt.Sprintf("admitctl: slot count invariant violated: available.Count = %d", s.available.Count))
	}
}

// signal credits r back to available and wakes queued waiters in FIFO
// order until the head no longer fits. It is called by Permit.Release and
// by the finalizer safety net.
func (s *Semaphore) signal(r Resources) {
	s.mu.Lock()
	s.available = s.available.Add(r)
	s.wakeLocked()
	s.mu.Unlock()
}

// consumeMemory debits m bytes from available.Memory with no waking and no
// slot accounting, used by MemoryUnits construction and Reset's debit step.
func (s *Semaphore) consumeMemory(m int64) {
	s.mu.Lock()
	s.available.Memory -= m
	s.mu.Unlock()
}

// signalMemory credits m bytes back to available.Memory and runs the wake
// loop, used by MemoryUnits release and Reset's credit step.
func (s *Semaphore) signalMemory(m int64) {
	s.mu.Lock()
	s.available.Memory += m
	s.wakeLocked()
	s.mu.Unlock()
}

// wakeLocked runs the signal wake loop. Callers must hold s.mu.
func (s *Semaphore) wakeLocked() {
	for {
		head := s.waitList.Front()
		if head == nil || !mayProceed(s.available, head.Resources) {
			return
		}
		s.available = s.available.Sub(head.Resources)
		s.checkSlotInvariantLocked()
		popped := s.waitList.PopFront()
		if !popped.Complete(admitResult{permit: newPermit(s, head.Resources)}) {
			// Lost the race against a timeout that fired and already
			// removed+failed this waiter; give the resources back and
			// keep trying the new head.
			s.available = s.available.Add(head.Resources)
			continue
		}
	}
}

// RegisterInactiveRead registers reader as idle so its resources may be
// reclaimed under pressure. If the wait queue is non-empty, registering
// would be wasteful: reader is evicted immediately instead, and the empty
// handle is returned.
func (s *Semaphore) RegisterInactiveRead(reader InactiveRead) InactiveReadHandle {
	s.mu.Lock()
	if s.waitList.Len() == 0 {
		h := s.inactive.register(reader)
		s.mu.Unlock()
		return h
	}
	s.permitBasedEvictions++
	s.mu.Unlock()
	Logger().Info("inactive read registration short-circuited by waiters", "semaphore", s.name)
	reader.Evict()
	return InactiveReadHandle{}
}

// UnregisterInactiveRead removes and returns the reader registered under
// h, without evicting it. It reports false if h does not refer to a
// currently-registered entry (e.g. it was already evicted).
func (s *Semaphore) UnregisterInactiveRead(h InactiveReadHandle) (InactiveRead, bool) {
	if h.IsZero() {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inactive.unregister(h)
}

// TryEvictOneInactiveRead evicts the oldest registered inactive read, if
// any, and reports whether an eviction happened.
func (s *Semaphore) TryEvictOneInactiveRead() bool {
	s.mu.Lock()
	if s.inactive.len() == 0 {
		s.mu.Unlock()
		return false
	}
	s.evictOldestLocked()
	s.mu.Unlock()
	return true
}

// evictOldestLocked pops and evicts the oldest inactive read. Callers must
// hold s.mu; the registry entry is removed before Evict is called so
// Evict's side effects (typically releasing the reader's permit, which
// calls back into signal) never observe a stale registry entry.
func (s *Semaphore) evictOldestLocked() {
	reader, ok := s.inactive.popOldest()
	if !ok {
		return
	}
	s.permitBasedEvictions++
	s.mu.Unlock()
	Logger().Info("evicting inactive read under admission pressure", "semaphore", s.name)
	reader.Evict()
	s.mu.Lock()
}

// Stats returns a snapshot of the Semaphore's bookkeeping counters.
func (s *Semaphore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Population:           s.inactive.len(),
		PermitBasedEvictions: s.permitBasedEvictions,
	}
}

// Close marks the Semaphore closed: no further admissions are accepted
// and any still-queued waiters are failed with ErrSemaphoreClosed.
// Permits already issued remain valid to release.
func (s *Semaphore) Close() {
	s.mu.Lock()
	s.closed = true
	for {
		w := s.waitList.PopFront()
		if w == nil {
			break
		}
		w.Fail(ErrSemaphoreClosed)
	}
	s.mu.Unlock()
}
