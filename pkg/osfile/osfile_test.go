//go:build unix

package osfile

import (
	"errors"
	"io/fs"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "path error is not repeated",
			err:  &Error{Op: OpOpen, Path: "/x", Err: &fs.PathError{Op: "open", Path: "/x", Err: syscall.ENOENT}},
			want: "cannot open /x: no such file or directory",
		},
		{
			name: "bare errno",
			err:  &Error{Op: OpMap, Path: "/x", Err: syscall.ENOMEM},
			want: "cannot mmap /x: cannot allocate memory",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	err := tests[0].err
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.True(t, IsAccess(err))
}
