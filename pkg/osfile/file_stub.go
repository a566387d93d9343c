//go:build !linux

package osfile

// File is a placeholder on non-Linux platforms.
type File struct{}

// Open always fails on unsupported platforms.
func Open(path string) (*File, error) {
	return nil, &Error{Op: OpOpen, Path: path, Err: errUnsupported}
}

// OpenDirect always fails on unsupported platforms.
func OpenDirect(path string) (*File, error) {
	return Open(path)
}

func (f *File) Path() string                              { return "" }
func (f *File) Fd() int                                   { return -1 }
func (f *File) Size() (uint64, error)                     { return 0, errUnsupported }
func (f *File) Map() (*Mapping, error)                    { return nil, errUnsupported }
func (f *File) Evict(off, length uint64) error            { return errUnsupported }
func (f *File) ReadAt(buf []byte, off int64) (int, error) { return 0, errUnsupported }
func (f *File) Close() error                              { return nil }

// Mapping is a placeholder on non-Linux platforms.
type Mapping struct{}

func (m *Mapping) Len() uint64                                    { return 0 }
func (m *Mapping) PageSize() uint64                               { return PageSize() }
func (m *Mapping) Residency(off, length uint64, vec []byte) error { return errUnsupported }
func (m *Mapping) Close() error                                   { return nil }
