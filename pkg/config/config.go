// Package config loads cachespot settings from defaults, an optional YAML
// file, CACHESPOT_* environment variables and bound command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/srodi/cachespot/pkg/parts"
	"github.com/srodi/cachespot/pkg/report"
	"github.com/srodi/cachespot/pkg/types"
)

// Sentinel validation errors.
var (
	ErrNoSlots   = errors.New("slot count must be positive")
	ErrNoCycles  = errors.New("cycle count must be positive")
	ErrThreshold = errors.New("threshold must not be negative")
	ErrNoLimit   = errors.New("top limit must be positive")
	ErrBlock     = errors.New("invalid block size")
	ErrLogLevel  = errors.New("invalid log level")
	ErrPolicy    = parts.ErrPolicy
	ErrFormat    = report.ErrFormat
)

const (
	envPrefix   = "CACHESPOT"
	configName  = "cachespot"
	blockAlign  = 4096
	defaultRead = 1024
)

// Config holds every cachespot setting.
type Config struct {
	Trace   TraceConfig   `mapstructure:"trace"`
	Stats   StatsConfig   `mapstructure:"stats"`
	Read    ReadConfig    `mapstructure:"read"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// TraceConfig controls the trace command.
type TraceConfig struct {
	Delay     time.Duration `mapstructure:"delay"`
	Count     uint64        `mapstructure:"count"`
	Threshold float64       `mapstructure:"threshold"`
	Slots     int           `mapstructure:"slots"`
	Policy    string        `mapstructure:"policy"`
}

// StatsConfig controls the stats command.
type StatsConfig struct {
	Edge    int     `mapstructure:"edge"`
	Zeroes  bool    `mapstructure:"zeroes"`
	Summary bool    `mapstructure:"summary"`
	Top     bool    `mapstructure:"top"`
	Limit   int     `mapstructure:"limit"`
	Ratio   float64 `mapstructure:"ratio"`
	Format  string  `mapstructure:"format"`
}

// ReadConfig controls the read load generator.
type ReadConfig struct {
	Block  string        `mapstructure:"block"`
	Delay  time.Duration `mapstructure:"delay"`
	Count  uint64        `mapstructure:"count"`
	Random bool          `mapstructure:"random"`
	Direct bool          `mapstructure:"direct"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	File string `mapstructure:"file"`
}

// Load reads the configuration into v and validates it. An empty path
// searches the default locations; a missing default file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
		v.AddConfigPath("/etc/" + configName)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trace.delay", types.DefaultDelay)
	v.SetDefault("trace.count", types.DefaultCount)
	v.SetDefault("trace.threshold", types.DefaultThreshold)
	v.SetDefault("trace.slots", types.DefaultSlots)
	v.SetDefault("trace.policy", parts.Equal.String())

	v.SetDefault("stats.edge", 0)
	v.SetDefault("stats.zeroes", false)
	v.SetDefault("stats.summary", false)
	v.SetDefault("stats.top", false)
	v.SetDefault("stats.limit", types.DefaultTopK)
	v.SetDefault("stats.ratio", 0.0)
	v.SetDefault("stats.format", string(report.FormatPlain))

	v.SetDefault("read.block", humanize.IBytes(types.DefaultBlock))
	v.SetDefault("read.delay", time.Duration(0))
	v.SetDefault("read.count", defaultRead)
	v.SetDefault("read.random", false)
	v.SetDefault("read.direct", false)

	v.SetDefault("log.level", logrus.InfoLevel.String())
	v.SetDefault("log.format", "text")

	v.SetDefault("metrics.file", "")
}

// Validate checks cfg and clamps Stats.Ratio into [0, 1].
func (c *Config) Validate() error {
	if c.Trace.Slots <= 0 {
		return fmt.Errorf("%w: %d", ErrNoSlots, c.Trace.Slots)
	}
	if c.Trace.Count == 0 {
		return fmt.Errorf("trace: %w", ErrNoCycles)
	}
	if c.Trace.Threshold < 0 {
		return fmt.Errorf("%w: %g", ErrThreshold, c.Trace.Threshold)
	}
	if _, err := c.TracePolicy(); err != nil {
		return err
	}

	if c.Stats.Top && c.Stats.Limit <= 0 {
		return fmt.Errorf("%w: %d", ErrNoLimit, c.Stats.Limit)
	}
	c.Stats.Ratio = min(max(c.Stats.Ratio, 0), 1)
	if _, err := c.StatsFormat(); err != nil {
		return err
	}

	if _, err := c.BlockSize(); err != nil {
		return err
	}
	if c.Read.Count == 0 {
		return fmt.Errorf("read: %w", ErrNoCycles)
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w %q", ErrLogLevel, c.Log.Level)
	}
	return nil
}

// TracePolicy is the parsed trace partition policy.
func (c *Config) TracePolicy() (parts.Policy, error) {
	return parts.ParsePolicy(c.Trace.Policy)
}

// StatsFormat is the parsed stats output format.
func (c *Config) StatsFormat() (report.Format, error) {
	return report.ParseFormat(c.Stats.Format)
}

// BlockSize is the read request size in bytes, rounded up to 4096.
func (c *Config) BlockSize() (uint64, error) {
	n, err := humanize.ParseBytes(c.Read.Block)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrBlock, c.Read.Block, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w %q", ErrBlock, c.Read.Block)
	}
	return (n + blockAlign - 1) / blockAlign * blockAlign, nil
}
