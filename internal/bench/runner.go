package bench

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shardfs/admitctl"
	"github.com/shardfs/admitctl/internal/fileutil"
)

// ReaderResult is one simulated reader's outcome, reported back for the
// benchmark summary.
type ReaderResult struct {
	Path      string
	WaitTime  time.Duration
	BytesRead int
	Err       error
}

// RunnerConfig configures a single benchmark pass over a catalog.
type RunnerConfig struct {
	Semaphore *admitctl.Semaphore
	Entries   []CatalogEntry
	Deadline  time.Time
	ReadRange int
	WorkDir   string
}

// Run admits and reads every catalog entry concurrently, replacing the
// teacher's ad hoc sync.WaitGroup + error-slice rollback pattern (see
// Manager.Shutdown) with golang.org/x/sync/errgroup's equivalent fan-out.
// Individual reader failures are recorded on their ReaderResult rather than
// aborting the whole run; every reader goroutine returns nil, so Run's
// error result is always nil.
func Run(ctx context.Context, cfg RunnerConfig) ([]ReaderResult, error) {
	results := make([]ReaderResult, len(cfg.Entries))

	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range cfg.Entries {
		i, entry := i, entry
		g.Go(func() error {
			results[i] = simulateRead(gctx, cfg, entry)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("benchmark run: %w", err)
	}
	return results, nil
}

// simulateRead admits one reader, opens its backing file (creating a
// sparse stand-in file under cfg.WorkDir sized to the entry if it does not
// already exist), and issues a single tracked bulk read.
func simulateRead(ctx context.Context, cfg RunnerConfig, entry CatalogEntry) ReaderResult {
	start := time.Now()

	permit, err := cfg.Semaphore.WaitAdmission(ctx, entry.SimulatedSize, cfg.Deadline)
	waited := time.Since(start)
	if err != nil {
		return ReaderResult{Path: entry.Path, WaitTime: waited, Err: fmt.Errorf("admission: %w", err)}
	}
	defer permit.Release()

	path := cfg.WorkDir + "/" + sanitizeEntryName(entry.Path)
	f, err := openOrCreateSized(path, entry.SimulatedSize)
	if err != nil {
		return ReaderResult{Path: entry.Path, WaitTime: waited, Err: fmt.Errorf("open backing file: %w", err)}
	}
	defer f.Close()

	tf := admitctl.NewTrackingFile(admitctl.NewOSFile(f), permit)
	buf, err := tf.ReadBulkAt(ctx, 0, cfg.ReadRange)
	if err != nil {
		return ReaderResult{Path: entry.Path, WaitTime: waited, Err: fmt.Errorf("bulk read: %w", err)}
	}
	defer buf.Release()

	return ReaderResult{Path: entry.Path, WaitTime: waited, BytesRead: len(buf.Bytes)}
}

// openOrCreateSized opens path, creating and truncating it to size bytes
// if it does not yet exist, so the simulated bulk read has real bytes to
// return.
func openOrCreateSized(path string, size int64) (*os.File, error) {
	if _, err := os.Stat(path); err == nil {
		return os.Open(path)
	}
	if err := fileutil.EnsureDirForFile(path); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// sanitizeEntryName maps a catalog path (which may look like an absolute
// storage-engine path) to a safe relative filename under the work
// directory.
func sanitizeEntryName(path string) string {
	out := make([]byte, 0, len(path))
	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '/', '\\', ':':
			out = append(out, '_')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
