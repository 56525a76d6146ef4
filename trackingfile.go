package admitctl

import (
	"context"
	"os"
)

// osFile adapts *os.File to the File interface. It is the concrete File
// implementation production callers are expected to use; tests can supply
// their own File fakes.
type osFile struct {
	f *os.File
}

// NewOSFile wraps f as a File.
func NewOSFile(f *os.File) File {
	return &osFile{f: f}
}

func (o *osFile) ReadAt(p []byte, off int64) (int, error)  { return o.f.ReadAt(p, off) }
func (o *osFile) WriteAt(p []byte, off int64) (int, error) { return o.f.WriteAt(p, off) }

func (o *osFile) ReadBulkAt(_ context.Context, offset int64, rangeSize int) ([]byte, error) {
	buf := make([]byte, rangeSize)
	n, err := o.f.ReadAt(buf, offset)
	if n > 0 {
		return buf[:n], trimEOF(err)
	}
	return buf[:0], trimEOF(err)
}

func (o *osFile) Flush() error { return o.f.Sync() }

func (o *osFile) Stat() (int64, error) {
	info, err := o.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (o *osFile) Truncate(size int64) error { return o.f.Truncate(size) }

func (o *osFile) Discard(offset, length int64) error {
	// Hole-punching is platform-specific and not exposed by the stdlib;
	// zero-filling approximates the observable effect (reads return
	// zeros) without reclaiming storage. Production deployments on Linux
	// would use golang.org/x/sys/unix.FallocPunchHole here.
	zeros := make([]byte, length)
	_, err := o.f.WriteAt(zeros, offset)
	return err
}

func (o *osFile) Allocate(offset, length int64) error {
	// No portable preallocation exists in the stdlib: this extends the file
	// with Truncate when offset+length runs past its end, which does change
	// the reported size, and reserves no storage blocks.
	size, err := o.Stat()
	if err != nil {
		return err
	}
	if want := offset + length; want > size {
		return o.f.Truncate(want)
	}
	return nil
}

func (o *osFile) Close() error { return o.f.Close() }

func (o *osFile) Dup() (File, error) {
	dup, err := os.Open(o.f.Name())
	if err != nil {
		return nil, err
	}
	return &osFile{f: dup}, nil
}

func (o *osFile) Name() string { return o.f.Name() }

func (o *osFile) ListDir() ([]string, error) {
	return o.f.Readdirnames(-1)
}

// trimEOF converts an os.ErrClosed-free EOF into nil for ReadBulkAt, which
// treats a short read as a normal completion rather than an error.
func trimEOF(err error) error {
	if err != nil && err.Error() == "EOF" {
		return nil
	}
	return err
}

// TrackedBuffer is the result of TrackingFile.ReadBulkAt: the bytes read,
// plus the MemoryUnits reservation debited for their size. The reservation
// is credited back by Release, which callers must call once they are done
// with Bytes.
type TrackedBuffer struct {
	Bytes []byte

	units MemoryUnits
}

// Release credits the buffer's memory reservation back to the owning
// Semaphore. Idempotent: calling it more than once is a safe no-op, since
// MemoryUnits.Release is itself idempotent.
func (b *TrackedBuffer) Release() {
	b.units.Release()
}

// TrackingFile wraps a File with a Permit, instrumenting the bulk-read path
// so the admitting Semaphore is told the real cost of each buffer once it
// is known, rather than only the estimate made at admission time. Every
// other operation forwards unmodified to the underlying File.
type TrackingFile struct {
	File
	permit Permit
}

// NewTrackingFile wraps file with permit. If permit is the zero Permit (an
// untracked reader), TrackingFile behaves as a plain pass-through: bulk
// reads are never instrumented.
func NewTrackingFile(file File, permit Permit) *TrackingFile {
	return &TrackingFile{File: file, permit: permit}
}

// ReadBulkAt reads up to rangeSize bytes at offset and returns them as a
// TrackedBuffer whose memory charge is sized to the buffer actually
// returned, not the requested rangeSize. The charge persists until the
// caller calls TrackedBuffer.Release. If the TrackingFile was constructed
// with a zero Permit, the returned TrackedBuffer's Release is a no-op.
func (t *TrackingFile) ReadBulkAt(ctx context.Context, offset int64, rangeSize int) (*TrackedBuffer, error) {
	buf, err := t.File.ReadBulkAt(ctx, offset, rangeSize)
	if err != nil {
		return nil, err
	}
	units := t.permit.GetMemoryUnits(int64(len(buf)))
	Logger().Debug("bulk read debited memory", "bytes", len(buf), "offset", offset)
	return &TrackedBuffer{Bytes: buf, units: units}, nil
}
