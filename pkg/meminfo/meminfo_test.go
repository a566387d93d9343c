package meminfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/procfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `MemTotal:       16384000 kB
MemFree:         1024000 kB
Buffers:          204800 kB
Cached:          8192000 kB
SwapCached:            0 kB
Dirty:              1024 kB
`

// fakeProc points Read at a temporary proc tree holding meminfo.
func fakeProc(t *testing.T, content string) {
	t.Helper()
	root := t.TempDir()
	if content != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, "meminfo"), []byte(content), 0o600))
	}
	procRoot = root
	t.Cleanup(func() { procRoot = procfs.DefaultMountPoint })
}

func TestReadParsesCounters(t *testing.T) {
	fakeProc(t, sample)

	info, err := Read()
	require.NoError(t, err)
	assert.Equal(t, Info{
		Total:   16384000 * 1024,
		Cached:  8192000 * 1024,
		Buffers: 204800 * 1024,
		Dirty:   1024 * 1024,
	}, info)
	assert.InDelta(t, (8192000.0+204800.0)/16384000.0, info.CachedRatio(), 1e-9)
}

func TestReadMissingCountersAreZero(t *testing.T) {
	fakeProc(t, "MemTotal: 1000 kB\n")

	info, err := Read()
	require.NoError(t, err)
	assert.Equal(t, Info{Total: 1000 * 1024}, info)
}

func TestReadErrors(t *testing.T) {
	fakeProc(t, "")
	_, err := Read()
	require.ErrorContains(t, err, "reading meminfo")

	fakeProc(t, "Cached: 1 kB\n")
	_, err = Read()
	require.ErrorContains(t, err, "MemTotal not found")

	procRoot = filepath.Join(t.TempDir(), "absent")
	_, err = Read()
	require.ErrorContains(t, err, "opening procfs")

	assert.Zero(t, Info{}.CachedRatio())
}
