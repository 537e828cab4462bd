// Package main implements the keyfold CLI.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/keyfold/internal/config"
	"github.com/dshills/keyfold/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	luaScript  string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "keyfold",
		Short: "Code folding for plain text files",
		Long: `keyfold computes foldable regions of a text file and lets you fold them.

Regions come from indentation by default, or from a Lua script that defines
folding_ranges(lines, tab_size).

Configuration is read from --config (TOML) and KEYFOLD_* environment
variables.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to TOML configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&flags.luaScript, "lua", "", "Lua script providing folding_ranges")

	root.AddCommand(newRangesCmd(&flags))
	root.AddCommand(newViewCmd(&flags))
	return root
}

// settings loads the configuration and applies flag overrides.
func (f *globalFlags) settings() (config.Config, error) {
	var opts []config.LoadOption
	if f.configPath == "" {
		opts = append(opts, config.Optional())
	}
	cfg, err := config.Load(f.configPath, opts...)
	if err != nil {
		return config.Config{}, err
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.luaScript != "" {
		cfg.Plugin.LuaProvider = f.luaScript
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// logger opens the configured logger. Output without a log file goes to
// fallback, or nowhere when fallback is nil.
func logger(cfg config.Config, fallback io.Writer) (*zap.Logger, func() error, error) {
	l, closeFn, err := logging.Open(cfg.Logging, fallback)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return l, closeFn, nil
}
