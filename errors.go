package admitctl

import "github.com/shardfs/admitctl/internal/sentinel"

// Sentinel errors for error inspection with errors.Is.
//
// These use the sentinel.Error const pattern instead of errors.New vars.
// sentinel.Error is a string type implementing error, allowing errors to be
// declared as const. This prevents accidental reassignment and enables
// compile-time immutability, while remaining compatible with errors.Is
// through Go's default == comparison on comparable types.
const (
	// ErrQueueOverload is returned by WaitAdmission when the admission
	// queue already holds MaxQueueLength waiters. Callers typically retry
	// later or fail the read request upstream.
	ErrQueueOverload = sentinel.Error("admitctl: admission queue overloaded")

	// ErrAdmissionTimeout is returned by WaitAdmission when a queued
	// request's deadline elapses before it can be admitted.
	ErrAdmissionTimeout = sentinel.Error("admitctl: admission deadline exceeded")

	// ErrSemaphoreClosed is returned by WaitAdmission once Close has been
	// called on the Semaphore. Existing permits remain valid to release;
	// no new admissions are accepted.
	ErrSemaphoreClosed = sentinel.Error("admitctl: semaphore closed")
)
