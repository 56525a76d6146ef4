package admitctl_test

import (
	"context"
	"testing"

	"github.com/shardfs/admitctl"
)

// fakeFile is an in-memory File used to test TrackingFile without touching
// the filesystem.
type fakeFile struct {
	data []byte
}

func (f *fakeFile) ReadAt(p []byte, off int64) (int, error)  { return copy(p, f.data[off:]), nil }
func (f *fakeFile) WriteAt(p []byte, off int64) (int, error) { return copy(f.data[off:], p), nil }

func (f *fakeFile) ReadBulkAt(_ context.Context, offset int64, rangeSize int) ([]byte, error) {
	end := offset + int64(rangeSize)
	if end > int64(len(f.data)) {
		end = int64(len(f.data))
	}
	return f.data[offset:end], nil
}

func (f *fakeFile) Flush() error                        { return nil }
func (f *fakeFile) Stat() (int64, error)                 { return int64(len(f.data)), nil }
func (f *fakeFile) Truncate(size int64) error            { return nil }
func (f *fakeFile) Discard(offset, length int64) error   { return nil }
func (f *fakeFile) Allocate(offset, length int64) error  { return nil }
func (f *fakeFile) Close() error                         { return nil }
func (f *fakeFile) Dup() (admitctl.File, error)          { return f, nil }
func (f *fakeFile) Name() string                         { return "fake" }
func (f *fakeFile) ListDir() ([]string, error)           { return nil, nil }

func TestTrackingFileReadBulkAtDebitsActualSize(t *testing.T) {
	t.Parallel()

	sem := admitctl.NewWithOptions(
		admitctl.WithCount(3), admitctl.WithMemory(1000), admitctl.WithName("tf"),
	)

	p, err := sem.WaitAdmission(t.Context(), 0, noDeadline)
	if err != nil {
		t.Fatalf("WaitAdmission() error = %v", err)
	}
	defer p.Release()

	// Underlying file only has 50 bytes; a request for 200 should be
	// debited at 50, the actual returned size, not the requested size.
	ff := &fakeFile{data: make([]byte, 50)}
	tf := admitctl.NewTrackingFile(ff, p)

	buf, err := tf.ReadBulkAt(t.Context(), 0, 200)
	if err != nil {
		t.Fatalf("ReadBulkAt() error = %v", err)
	}
	if len(buf.Bytes) != 50 {
		t.Fatalf("ReadBulkAt() returned %d bytes, want 50", len(buf.Bytes))
	}

	// 50 bytes should be debited, leaving 950 of the 1000-byte budget.
	p2, err := sem.WaitAdmission(t.Context(), 950, noDeadline)
	if err != nil {
		t.Fatalf("WaitAdmission(950) after bulk read error = %v, want nil", err)
	}
	defer p2.Release()

	buf.Release()
	// Releasing the tracked buffer must credit the 50 bytes back.
	p3, err := sem.WaitAdmission(t.Context(), 1000, noDeadline)
	if err != nil {
		t.Fatalf("WaitAdmission(1000) after buffer Release error = %v, want nil", err)
	}
	p3.Release()
}

func TestTrackingFileWithZeroPermitDoesNotTrack(t *testing.T) {
	t.Parallel()

	ff := &fakeFile{data: make([]byte, 50)}
	tf := admitctl.NewTrackingFile(ff, admitctl.Permit{})

	buf, err := tf.ReadBulkAt(t.Context(), 0, 50)
	if err != nil {
		t.Fatalf("ReadBulkAt() error = %v", err)
	}
	buf.Release() // must not panic against a nil Semaphore
}
