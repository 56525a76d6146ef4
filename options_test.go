package admitctl_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shardfs/admitctl"
)

// panicTestCase defines a test case for option validation panic tests.
type panicTestCase struct {
	name     string
	panics   bool
	panicMsg string
	fn       func()
}

// requirePanics calls fn and verifies it panics (or not) with the expected message.
func requirePanics(t *testing.T, shouldPanic bool, wantMsg string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		switch {
		case shouldPanic && r == nil:
			t.Fatal("expected panic but didn't get one")
		case !shouldPanic && r != nil:
			t.Fatalf("unexpected panic: %v", r)
		case shouldPanic:
			if msg := fmt.Sprint(r); msg != wantMsg {
				t.Fatalf("expected panic message %q, got %q", wantMsg, msg)
			}
		}
	}()
	fn()
}

// runPanicTests runs a slice of panic test cases using requirePanics.
func runPanicTests(t *testing.T, tests []panicTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			requirePanics(t, tt.panics, tt.panicMsg, tt.fn)
		})
	}
}

func TestWithCountPanicsOnInvalid(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "negative",
			panics:   true,
			panicMsg: "admitctl: slot count must be non-negative, got -1",
			fn:       func() { admitctl.WithCount(-1) },
		},
		{name: "zero", fn: func() { admitctl.WithCount(0) }},
		{name: "valid", fn: func() { admitctl.WithCount(16) }},
	})
}

func TestWithMemoryPanicsOnInvalid(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "negative",
			panics:   true,
			panicMsg: "admitctl: memory capacity must be non-negative, got -1",
			fn:       func() { admitctl.WithMemory(-1) },
		},
		{name: "zero", fn: func() { admitctl.WithMemory(0) }},
		{name: "valid", fn: func() { admitctl.WithMemory(1 << 20) }},
	})
}

func TestWithMaxQueueLengthPanicsOnInvalid(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "negative",
			panics:   true,
			panicMsg: "admitctl: max queue length must be non-negative, got -1",
			fn:       func() { admitctl.WithMaxQueueLength(-1) },
		},
		{name: "zero_no_waiting", fn: func() { admitctl.WithMaxQueueLength(0) }},
		{name: "valid", fn: func() { admitctl.WithMaxQueueLength(64) }},
	})
}

func TestWithNamePanicsOnEmpty(t *testing.T) {
	t.Parallel()
	runPanicTests(t, []panicTestCase{
		{
			name:     "empty",
			panics:   true,
			panicMsg: "admitctl: name must not be empty",
			fn:       func() { admitctl.WithName("") },
		},
		{name: "valid", fn: func() { admitctl.WithName("reads") }},
	})
}

func TestOptionApplicationDefaults(t *testing.T) {
	t.Parallel()

	sem := admitctl.NewWithOptions()
	stats := sem.Stats()
	if stats.Population != 0 || stats.PermitBasedEvictions != 0 {
		t.Errorf("Stats() = %+v, want zero value", stats)
	}

	// DefaultCount slots should be immediately admittable, and no more.
	p, err := sem.WaitAdmission(t.Context(), 0, noDeadline)
	if err != nil {
		t.Fatalf("WaitAdmission() error = %v, want nil", err)
	}
	defer p.Release()

	sem2 := admitctl.NewWithOptions(admitctl.WithMaxQueueLength(0))
	if _, err := sem2.WaitAdmission(t.Context(), 0, noDeadline); !errors.Is(err, admitctl.ErrQueueOverload) {
		t.Fatalf("WaitAdmission() with a zero-length queue error = %v, want ErrQueueOverload", err)
	}
}

func TestOptionApplicationOverrides(t *testing.T) {
	t.Parallel()

	sem := admitctl.NewWithOptions(admitctl.WithCount(2), admitctl.WithMemory(100))

	p1, err := sem.WaitAdmission(t.Context(), 40, noDeadline)
	if err != nil {
		t.Fatalf("first WaitAdmission() error = %v, want nil", err)
	}
	defer p1.Release()

	p2, err := sem.WaitAdmission(t.Context(), 40, noDeadline)
	if err != nil {
		t.Fatalf("second WaitAdmission() error = %v, want nil", err)
	}
	defer p2.Release()

	// A third request exceeds Count (2 slots already taken).
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	if _, err := sem.WaitAdmission(ctx, 1, noDeadline); err == nil {
		t.Fatal("third WaitAdmission() error = nil, want a timeout/cancellation error")
	}
}
