package admitctl

import "fmt"

// requireNonNegative panics if v < 0 with a descriptive message.
func requireNonNegative[T int | int64](name string, v T) {
	if v < 0 {
		panic(fmt.Sprintf("admitctl: %s must be non-negative, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("admitctl: %s must not be empty", name))
	}
}

// Option configures a Semaphore during construction via NewWithOptions.
// Each With* function returns an Option that sets a specific field.
//
// Several With* functions panic on invalid input (negative sizes, empty
// names). These panics are intentional: option values are typically
// compile-time constants or package-level variables, so an invalid value
// indicates a programmer error rather than a runtime condition. The
// pattern mirrors [regexp.MustCompile] — fail fast during initialization
// instead of returning errors that would be universally fatal anyway.
type Option func(*Config)

// WithCount sets the hard cap on concurrent admitted readers.
//
// Default: DefaultCount.
//
// Panics if count < 0.
func WithCount(count int) Option {
	requireNonNegative("slot count", count)
	return func(c *Config) {
		c.Count = count
	}
}

// WithMemory sets the soft cap, in bytes, on admitted readers' memory
// budget. Memory is soft: a single request may still be admitted even if
// it exceeds the remaining budget, as long as some headroom remains (see
// "Two resource dimensions" in the package documentation).
//
// Default: DefaultMemory.
//
// Panics if memory < 0.
func WithMemory(memory int64) Option {
	requireNonNegative("memory capacity", memory)
	return func(c *Config) {
		c.Memory = memory
	}
}

// WithMaxQueueLength sets the cap on the admission wait queue. A
// WaitAdmission call made while the queue already holds n waiters fails
// immediately with ErrQueueOverload, before any admission check; with n
// of zero every call fails.
//
// Default: DefaultMaxQueueLength.
//
// Panics if n < 0.
func WithMaxQueueLength(n int) Option {
	requireNonNegative("max queue length", n)
	return func(c *Config) {
		c.MaxQueueLength = n
	}
}

// WithName sets the Semaphore's diagnostic name, embedded in errors and
// log lines to distinguish multiple Semaphores in the same process.
//
// Default: DefaultName.
//
// Panics if name is empty.
func WithName(name string) Option {
	requireNonEmpty("name", name)
	return func(c *Config) {
		c.Name = name
	}
}

// WithPrethrowAction sets a hook invoked synchronously just before
// WaitAdmission returns ErrQueueOverload, for diagnostics such as
// incrementing an overload counter or emitting a trace event.
//
// Default: nil (no hook).
func WithPrethrowAction(fn func()) Option {
	return func(c *Config) {
		c.PrethrowAction = fn
	}
}
