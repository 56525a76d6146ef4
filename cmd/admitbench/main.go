// Command admitbench benchmarks an admitctl.Semaphore against a synthetic
// workload catalog of simulated storage reads.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shardfs/admitctl"
	"github.com/shardfs/admitctl/internal/bench"
	"github.com/shardfs/admitctl/internal/fileutil"
)

func main() {
	if err := run(); err != nil {
		slog.Default().Error("admitbench failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		workDir        = flag.String("dir", "./admitbench-data", "working directory for the catalog db and simulated files")
		count          = flag.Int("count", 16, "admission slot capacity")
		memory         = flag.Int64("memory", 64<<20, "admission memory capacity in bytes")
		maxQueueLength = flag.Int("max-queue", 256, "admission queue cap")
		numEntries     = flag.Int("entries", 64, "number of synthetic catalog entries to generate and read")
		entrySize      = flag.Int64("entry-size", 1<<20, "simulated size, in bytes, of each catalog entry")
		readRange      = flag.Int("read-range", 256<<10, "bytes requested per simulated bulk read")
		timeout        = flag.Duration("timeout", 2*time.Minute, "overall benchmark timeout")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	if err := fileutil.EnsureDir(*workDir); err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}

	fl, err := bench.AcquireDirLock(ctx, *workDir)
	if err != nil {
		return fmt.Errorf("locking work directory: %w", err)
	}
	defer bench.ReleaseDirLock(slog.Default(), fl)

	dbPath := filepath.Join(*workDir, "catalog.db")
	db, err := bench.OpenCatalog(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer db.Close()

	entries := make([]bench.CatalogEntry, *numEntries)
	for i := range entries {
		entries[i] = bench.CatalogEntry{
			Path:          fmt.Sprintf("sstable-%04d.db", i),
			SimulatedSize: *entrySize,
		}
	}
	if err := bench.SeedCatalog(ctx, db, entries); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	loaded, err := bench.ListCatalog(ctx, db)
	if err != nil {
		return fmt.Errorf("listing catalog: %w", err)
	}

	var prethrows int
	sem := admitctl.NewWithOptions(
		admitctl.WithCount(*count),
		admitctl.WithMemory(*memory),
		admitctl.WithMaxQueueLength(*maxQueueLength),
		admitctl.WithName("admitbench"),
		admitctl.WithPrethrowAction(func() { prethrows++ }),
	)

	results, err := bench.Run(ctx, bench.RunnerConfig{
		Semaphore: sem,
		Entries:   loaded,
		ReadRange: *readRange,
		WorkDir:   *workDir,
	})
	if err != nil {
		return fmt.Errorf("running benchmark: %w", err)
	}

	summarize(results, sem.Stats(), prethrows)
	return nil
}

func summarize(results []bench.ReaderResult, stats admitctl.Stats, prethrows int) {
	var (
		succeeded int
		failed    int
		totalWait time.Duration
		maxWait   time.Duration
	)
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			failed++
			errs = append(errs, r.Err)
			continue
		}
		succeeded++
		totalWait += r.WaitTime
		if r.WaitTime > maxWait {
			maxWait = r.WaitTime
		}
	}

	var avgWait time.Duration
	if succeeded > 0 {
		avgWait = totalWait / time.Duration(succeeded)
	}

	slog.Default().Info("admitbench complete",
		"succeeded", succeeded,
		"failed", failed,
		"avg_wait", avgWait,
		"max_wait", maxWait,
		"population", stats.Population,
		"permit_based_evictions", stats.PermitBasedEvictions,
		"queue_overloads", prethrows,
	)
	if len(errs) > 0 {
		slog.Default().Warn("some reads failed", "err", errors.Join(errs...))
	}
}
