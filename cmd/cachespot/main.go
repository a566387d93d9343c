// Package main is the cachespot command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/srodi/cachespot/pkg/config"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
)

// app is the state shared by every subcommand.
type app struct {
	v     *viper.Viper
	path  string
	debug bool
	cfg   *config.Config
	log   *logrus.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New(), log: logrus.New()}

	root := &cobra.Command{
		Use:   "cachespot",
		Short: "Inspect which parts of files live in the page cache",
		Long: `cachespot reports page cache residency of files.

Commands:
  trace     Watch residency of one file change over time
  stats     Summarise residency over a directory tree
  read      Generate block reads against a file
  evict     Drop cached pages of files`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.path, "config", "", "config file (default cachespot.yaml in ., ~/.config/cachespot, /etc/cachespot)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("metrics-file", "", "write Prometheus gauges to this textfile")
	a.bind("log.format", flags.Lookup("log-format"))
	a.bind("metrics.file", flags.Lookup("metrics-file"))

	root.AddCommand(
		newTraceCommand(a),
		newStatsCommand(a),
		newReadCommand(a),
		newEvictCommand(a),
		newVersionCommand(),
	)
	return root
}

// setup loads the configuration and configures logging before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log.SetOutput(cmd.ErrOrStderr())
	if cfg.Log.Format == "json" {
		a.log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, _ := logrus.ParseLevel(cfg.Log.Level)
	if a.debug {
		level = logrus.DebugLevel
	}
	a.log.SetLevel(level)
	a.log.WithField("config", a.v.ConfigFileUsed()).Debug("configuration loaded")
	return nil
}

// bind makes a flag override the configuration key. Unknown flags are a programming error.
func (a *app) bind(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding %s: %v", key, err))
	}
}
