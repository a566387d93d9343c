//go:build linux

package load

import "golang.org/x/sys/unix"

// alignedBuffer maps a page aligned anonymous buffer, as O_DIRECT requires.
func alignedBuffer(size int) ([]byte, func(), error) {
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	return buf, func() { _ = unix.Munmap(buf) }, nil
}
