//go:build linux

package load

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srodi/cachespot/pkg/osfile"
)

func TestRunAgainstFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, make([]byte, 5*4096), 0o600))

	f, err := osfile.Open(path)
	require.NoError(t, err)
	defer f.Close()

	log, _ := logtest.NewNullLogger()
	res, err := New(Config{Block: 4096, Count: 8, Random: true}, log, nil).Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), res.Reads)
	assert.Equal(t, uint64(8*4096), res.Bytes)
	assert.Equal(t, uint64(5), res.Slots)
}
