//go:build linux

package osfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// File is an open read-only file.
type File struct {
	f    *os.File
	path string
}

// Open opens path read-only without touching its access time.
func Open(path string) (*File, error) {
	return open(path, 0)
}

// OpenDirect opens path read-only bypassing the page cache.
func OpenDirect(path string) (*File, error) {
	return open(path, unix.O_DIRECT)
}

func open(path string, extra int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NOATIME|extra, 0)
	if err != nil && extra == 0 {
		// O_NOATIME is refused for files we do not own
		f, err = os.OpenFile(path, os.O_RDONLY, 0)
	}
	if err != nil {
		return nil, &Error{Op: OpOpen, Path: path, Err: err}
	}
	return &File{f: f, path: path}, nil
}

// Path is the name the file was opened with.
func (f *File) Path() string { return f.path }

// Fd is the raw descriptor.
func (f *File) Fd() int { return int(f.f.Fd()) }

// Size returns the file length in bytes.
func (f *File) Size() (uint64, error) {
	info, err := f.f.Stat()
	if err != nil {
		return 0, &Error{Op: OpStat, Path: f.path, Err: err}
	}
	if info.Size() < 0 {
		return 0, nil
	}
	return uint64(info.Size()), nil
}

// Map maps the whole file read-only. A zero length file maps to an empty Mapping.
func (f *File) Map() (*Mapping, error) {
	size, err := f.Size()
	if err != nil {
		return nil, err
	}
	m := &Mapping{path: f.path, page: PageSize()}
	if size == 0 {
		return m, nil
	}
	if size > uint64(^uint(0)>>1) {
		return nil, &Error{Op: OpMap, Path: f.path, Err: unix.EFBIG}
	}
	data, err := unix.Mmap(f.Fd(), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, &Error{Op: OpMap, Path: f.path, Err: err}
	}
	// probing must not pull pages in through readahead
	_ = unix.Madvise(data, unix.MADV_RANDOM)
	m.data = data
	return m, nil
}

// Evict asks the kernel to drop cached pages of [off, off+length). Zero length means to the end.
func (f *File) Evict(off, length uint64) error {
	if err := unix.Fadvise(f.Fd(), int64(off), int64(length), unix.FADV_DONTNEED); err != nil {
		return &Error{Op: OpAdvise, Path: f.path, Err: err}
	}
	return nil
}

// ReadAt reads into buf at off, retrying interrupted calls.
func (f *File) ReadAt(buf []byte, off int64) (int, error) {
	for {
		n, err := unix.Pread(f.Fd(), buf, off)
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		return n, err
	}
}

// Close releases the descriptor.
func (f *File) Close() error {
	return f.f.Close()
}

// Mapping is a read-only shared mapping of a file.
type Mapping struct {
	path string
	page uint64
	data []byte
}

// Len is the mapped byte length.
func (m *Mapping) Len() uint64 { return uint64(len(m.data)) }

// PageSize is the residency granule.
func (m *Mapping) PageSize() uint64 { return m.page }

// Residency fills vec with one flag byte per page of [off, off+length).
// Bit 0 of a flag is set when the page is resident.
func (m *Mapping) Residency(off, length uint64, vec []byte) error {
	end := min(off+length, m.Len())
	if off >= end {
		return nil
	}
	if err := unix.Mincore(m.data[off:end], vec); err != nil {
		return &Error{Op: OpResolve, Path: m.path, Err: err}
	}
	return nil
}

// Close unmaps the region. Calling it twice is a no-op.
func (m *Mapping) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	if err := unix.Munmap(data); err != nil && err != unix.EINVAL {
		return &Error{Op: OpUnmap, Path: m.path, Err: err}
	}
	return nil
}
