// Package osfile opens and maps files for residency probing.
package osfile

import (
	"errors"
	"io/fs"
	"os"
)

// Op names the OS operation that failed.
type Op string

const (
	OpOpen    Op = "open"
	OpStat    Op = "stat"
	OpMap     Op = "mmap"
	OpUnmap   Op = "munmap"
	OpAdvise  Op = "fadvise"
	OpResolve Op = "mincore"
)

var errUnsupported = errors.New("osfile: mapping files requires linux")

// Error records a failed operation on a path.
type Error struct {
	Op   Op
	Path string
	Err  error
}

func (e *Error) Error() string {
	cause := e.Err
	var pathErr *fs.PathError
	if errors.As(cause, &pathErr) {
		cause = pathErr.Err
	}
	return "cannot " + string(e.Op) + " " + e.Path + ": " + cause.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IsAccess reports whether err came from a permission or existence problem.
func IsAccess(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, os.ErrNotExist)
}

// PageSize is the granule residency is reported in.
func PageSize() uint64 {
	return uint64(os.Getpagesize())
}
