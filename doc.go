// Package admitctl implements admission control for a storage engine's read
// path: a two-dimensional semaphore that gates concurrent readers on both a
// hard slot count and a soft memory budget, with an inactive-read registry
// that lets new admissions reclaim resources from idle readers instead of
// queueing behind them.
//
// # Basic usage
//
//	sem := admitctl.NewWithOptions(
//	    admitctl.WithCount(32),
//	    admitctl.WithMemory(64<<20),
//	    admitctl.WithMaxQueueLength(128),
//	    admitctl.WithName("sstable-reads"),
//	)
//
//	permit, err := sem.WaitAdmission(ctx, estimatedBytes, deadline)
//	if err != nil {
//	    return err
//	}
//	defer permit.Release()
//
//	tf := admitctl.NewTrackingFile(file, permit)
//	buf, err := tf.ReadBulkAt(ctx, offset, length)
//
// # Two resource dimensions
//
// Count is hard: a request whose slot cost exceeds the currently available
// slots is never admitted, regardless of memory headroom. Memory is soft: a
// request is admitted as long as any memory headroom remains, even if its
// estimated cost overshoots what's left, because storage read estimates
// commonly overshoot the real cost. A fully depleted memory pool still
// blocks requests that ask for memory at all.
//
// # Idle readers and eviction
//
// A reader that is admitted but not currently making progress (for example,
// waiting on a downstream fetch) can register itself via
// Semaphore.RegisterInactiveRead. If the wait queue is empty at that moment,
// the registration succeeds and the reader may later be evicted to free its
// resources for a new admission. If the wait queue is non-empty, registering
// would only delay a waiter that could use those resources right away, so
// the reader is evicted immediately instead.
//
// # Concurrency
//
// Each Semaphore is intended to be confined to a single goroutine's workload
// (mirroring a per-shard scheduling model), though an internal mutex makes
// accidental concurrent use from multiple goroutines safe rather than
// corrupting — it serializes instead of racing. Permits and MemoryUnits may
// be released from any goroutine.
package admitctl
