package bench

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryInterval is the interval between consecutive attempts to
// acquire the benchmark's output-directory lock. 50ms balances
// responsiveness against CPU overhead from busy-polling.
const lockRetryInterval = 50 * time.Millisecond

// AcquireDirLock takes an exclusive lock on dir, so two admitbench
// invocations against the same working directory do not corrupt each
// other's catalog and output files. While the lock is held elsewhere it
// retries every lockRetryInterval and fails only once ctx is done.
func AcquireDirLock(ctx context.Context, dir string) (*flock.Flock, error) {
	lockPath := filepath.Join(dir, ".admitbench.lock")
	fl := flock.New(lockPath)

	locked, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquiring directory lock %s: %w", lockPath, err)
	}
	if !locked {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquiring directory lock %s: %w", lockPath, ctx.Err())
		}
		return nil, fmt.Errorf("acquiring directory lock %s: lock not acquired", lockPath)
	}
	return fl, nil
}

// ReleaseDirLock releases the lock and closes its file descriptor. The
// lock file is intentionally left on disk: removing it could invalidate a
// lock concurrently acquired by another process racing to create it.
// Close() calls Unlock() internally, so no explicit Unlock is needed.
func ReleaseDirLock(logger *slog.Logger, fl *flock.Flock) {
	if fl == nil {
		return
	}
	if err := fl.Close(); err != nil {
		logger.Debug("failed to release directory lock", "path", fl.Path(), "err", err)
	}
}
