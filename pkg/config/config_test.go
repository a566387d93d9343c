package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srodi/cachespot/pkg/config"
	"github.com/srodi/cachespot/pkg/parts"
	"github.com/srodi/cachespot/pkg/report"
	"github.com/srodi/cachespot/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cachespot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(viper.New(), writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, types.DefaultSlots, cfg.Trace.Slots)
	assert.Equal(t, uint64(types.DefaultCount), cfg.Trace.Count)
	assert.InDelta(t, types.DefaultThreshold, cfg.Trace.Threshold, 1e-9)
	assert.Equal(t, time.Duration(0), cfg.Trace.Delay)
	assert.Equal(t, types.DefaultTopK, cfg.Stats.Limit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Metrics.File)

	policy, err := cfg.TracePolicy()
	require.NoError(t, err)
	assert.Equal(t, parts.Equal, policy)

	format, err := cfg.StatsFormat()
	require.NoError(t, err)
	assert.Equal(t, report.FormatPlain, format)

	block, err := cfg.BlockSize()
	require.NoError(t, err)
	assert.Equal(t, uint64(types.DefaultBlock), block)
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `trace:
  delay: 250ms
  count: 10
  slots: 80
  policy: tailed
stats:
  edge: 2
  top: true
  limit: 5
  format: table
read:
  block: 6KB
  random: true
metrics:
  file: /tmp/cachespot.prom
`)
	cfg, err := config.Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Trace.Delay)
	assert.Equal(t, uint64(10), cfg.Trace.Count)
	assert.Equal(t, 80, cfg.Trace.Slots)
	assert.Equal(t, 2, cfg.Stats.Edge)
	assert.True(t, cfg.Stats.Top)
	assert.True(t, cfg.Read.Random)
	assert.Equal(t, "/tmp/cachespot.prom", cfg.Metrics.File)

	policy, err := cfg.TracePolicy()
	require.NoError(t, err)
	assert.Equal(t, parts.Tailed, policy)

	block, err := cfg.BlockSize()
	require.NoError(t, err)
	assert.Equal(t, uint64(8192), block)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("CACHESPOT_TRACE_SLOTS", "12")
	t.Setenv("CACHESPOT_STATS_FORMAT", "yaml")

	cfg, err := config.Load(viper.New(), writeConfig(t, "trace:\n  slots: 80\n"))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Trace.Slots)
	assert.Equal(t, "yaml", cfg.Stats.Format)
}

func TestLoadBoundFlagsWin(t *testing.T) {
	flags := pflag.NewFlagSet("trace", pflag.ContinueOnError)
	flags.Int("slots", types.DefaultSlots, "")
	require.NoError(t, flags.Parse([]string{"--slots", "7"}))

	v := viper.New()
	require.NoError(t, v.BindPFlag("trace.slots", flags.Lookup("slots")))

	cfg, err := config.Load(v, writeConfig(t, "trace:\n  slots: 80\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Trace.Slots)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := config.Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Trace: config.TraceConfig{Count: 1, Slots: 48, Threshold: 0.1},
			Stats: config.StatsConfig{Limit: 16},
			Read:  config.ReadConfig{Block: "4KiB", Count: 1},
			Log:   config.LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"zero slots", func(c *config.Config) { c.Trace.Slots = 0 }, config.ErrNoSlots},
		{"zero trace count", func(c *config.Config) { c.Trace.Count = 0 }, config.ErrNoCycles},
		{"negative threshold", func(c *config.Config) { c.Trace.Threshold = -1 }, config.ErrThreshold},
		{"unknown policy", func(c *config.Config) { c.Trace.Policy = "fair" }, config.ErrPolicy},
		{"top without limit", func(c *config.Config) { c.Stats.Top, c.Stats.Limit = true, 0 }, config.ErrNoLimit},
		{"unknown format", func(c *config.Config) { c.Stats.Format = "csv" }, config.ErrFormat},
		{"garbage block", func(c *config.Config) { c.Read.Block = "lots" }, config.ErrBlock},
		{"zero block", func(c *config.Config) { c.Read.Block = "0" }, config.ErrBlock},
		{"zero read count", func(c *config.Config) { c.Read.Count = 0 }, config.ErrNoCycles},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, config.ErrLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())
}

func TestValidateClampsRatio(t *testing.T) {
	cfg := config.Config{
		Trace: config.TraceConfig{Count: 1, Slots: 1},
		Read:  config.ReadConfig{Block: "1", Count: 1},
		Log:   config.LogConfig{Level: "debug"},
	}

	cfg.Stats.Ratio = 3
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 1.0, cfg.Stats.Ratio, 1e-9)

	cfg.Stats.Ratio = -0.5
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 0.0, cfg.Stats.Ratio, 1e-9)

	block, err := cfg.BlockSize()
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), block)
}
