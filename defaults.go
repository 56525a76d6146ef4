package admitctl

import "math"

// Default configuration values for NewWithOptions. Exported so callers can
// reference the defaults when building custom configurations relative to
// them (e.g. 2 * DefaultMemory).
const (
	// DefaultCount is the slot capacity used when WithCount is not given.
	DefaultCount = 1

	// DefaultMemory is the memory capacity, in bytes, used when WithMemory
	// is not given. Zero means no memory budget at all: every request with
	// memory > 0 blocks until available.Memory becomes positive via a
	// Reset/Release elsewhere, so most callers should set this explicitly.
	DefaultMemory = 0

	// DefaultMaxQueueLength is the admission queue cap used when
	// WithMaxQueueLength is not given: effectively no cap. WaitAdmission
	// checks the cap before anything else and fails with ErrQueueOverload
	// whenever the queue already holds that many waiters, so an explicit
	// cap of zero rejects every call.
	DefaultMaxQueueLength = math.MaxInt

	// DefaultName is the diagnostic name used when WithName is not given.
	DefaultName = "admitctl"
)
