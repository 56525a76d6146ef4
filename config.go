package admitctl

import (
	"errors"
	"fmt"
)

// Config configures a Semaphore. The zero Config is invalid; use New or
// NewWithOptions, both of which validate before constructing.
type Config struct {
	// Count is the hard cap on concurrent admitted readers.
	Count int
	// Memory is the soft cap, in bytes, on admitted readers' memory budget.
	Memory int64
	// MaxQueueLength bounds the admission wait queue. A WaitAdmission call
	// made while the queue already holds MaxQueueLength waiters fails with
	// ErrQueueOverload, before any admission check.
	MaxQueueLength int
	// Name identifies this Semaphore in errors and log lines.
	Name string
	// PrethrowAction, if set, is invoked synchronously just before
	// WaitAdmission returns ErrQueueOverload, for diagnostics.
	PrethrowAction func()
}

// Validate reports every configuration violation found, joined with
// errors.Join, rather than stopping at the first.
func (c Config) Validate() error {
	var errs []error
	if c.Count < 0 {
		errs = append(errs, fmt.Errorf("admitctl: Count must be non-negative, got %d", c.Count))
	}
	if c.Memory < 0 {
		errs = append(errs, fmt.Errorf("admitctl: Memory must be non-negative, got %d", c.Memory))
	}
	if c.MaxQueueLength < 0 {
		errs = append(errs, fmt.Errorf("admitctl: MaxQueueLength must be non-negative, got %d", c.MaxQueueLength))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("admitctl: Name must not be empty"))
	}
	return errors.Join(errs...)
}

// defaultConfig returns the configuration NewWithOptions layers its options
// over.
func defaultConfig() Config {
	return Config{
		Count:          DefaultCount,
		Memory:         DefaultMemory,
		MaxQueueLength: DefaultMaxQueueLength,
		Name:           DefaultName,
	}
}
