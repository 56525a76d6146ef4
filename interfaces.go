package admitctl

import "context"

// File is the set of file operations TrackingFile forwards to an
// underlying handle. It is satisfied by a thin wrapper around *os.File in
// production and by fakes in tests.
//
// Implementations must be safe for the same usage pattern as *os.File:
// concurrent calls to different offsets are fine, concurrent calls that
// share mutable state (e.g. two Close calls) need not be.
type File interface {
	// ReadAt reads len(p) bytes starting at off, per io.ReaderAt.
	ReadAt(p []byte, off int64) (int, error)
	// WriteAt writes len(p) bytes starting at off, per io.WriterAt.
	WriteAt(p []byte, off int64) (int, error)
	// ReadBulkAt reads up to rangeSize bytes starting at offset and returns
	// them as a single buffer. Unlike ReadAt, the returned buffer's actual
	// length may be less than rangeSize (a short read at EOF) and is
	// determined by the implementation, which is why TrackingFile debits
	// memory based on the returned buffer rather than the requested size.
	ReadBulkAt(ctx context.Context, offset int64, rangeSize int) ([]byte, error)
	// Flush persists any buffered writes.
	Flush() error
	// Stat returns the current size of the file in bytes.
	Stat() (int64, error)
	// Truncate resizes the file to size bytes.
	Truncate(size int64) error
	// Discard punches a hole in the byte range [offset, offset+length),
	// releasing the underlying storage without changing the file's size.
	Discard(offset, length int64) error
	// Allocate preallocates length bytes of storage starting at offset
	// without changing the file's reported size, reducing fragmentation
	// for subsequent writes.
	Allocate(offset, length int64) error
	// Close closes the file.
	Close() error
	// Dup returns an independent handle to the same underlying file,
	// sharing storage but not the read/write offset.
	Dup() (File, error)
	// Name returns the path the file was opened with, for diagnostics.
	Name() string
	// ListDir lists the immediate entries of the file when it was opened
	// as a directory handle. Forwarded unmodified; TrackingFile does not
	// instrument directory listings.
	ListDir() ([]string, error)
}
