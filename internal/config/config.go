// Package config loads widgetcore settings from an optional YAML file and
// WIDGETCORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nathoo/widgetcore/engine/conflict"
	"github.com/nathoo/widgetcore/internal/logging"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Runtime RuntimeConfig `mapstructure:"runtime"`
	TUI     TUIConfig     `mapstructure:"tui"`
	DumpDir string        `mapstructure:"dump_dir"`
}

// LoggingConfig selects the zerolog level and output format.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"` // empty logs to stderr
}

// RuntimeConfig holds manager and driver settings.
type RuntimeConfig struct {
	TickRate     time.Duration `mapstructure:"tick_rate"`
	TieBreak     string        `mapstructure:"tie_break"`
	StrictConfig bool          `mapstructure:"strict_config"`
	Seed         int64         `mapstructure:"seed"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	AutoTick bool `mapstructure:"auto_tick"`
}

// Load reads configuration from path (or the default search path when empty)
// and the environment. A missing default file is not an error; a missing
// explicit file is.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("runtime.tick_rate", 100*time.Millisecond)
	v.SetDefault("runtime.tie_break", "incumbent")
	v.SetDefault("runtime.strict_config", true)
	v.SetDefault("runtime.seed", 42)
	v.SetDefault("tui.auto_tick", true)
	v.SetDefault("dump_dir", filepath.Join(os.Getenv("HOME"), ".widgetcore", "dumps"))

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "widgetcore"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("WIDGETCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: must be console or json, got %q", c.Logging.Format))
	}
	if c.Runtime.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("runtime.tick_rate: must be positive, got %s", c.Runtime.TickRate))
	}
	if _, err := conflict.ParseTieBreak(c.Runtime.TieBreak); err != nil {
		errs = append(errs, fmt.Errorf("runtime.tie_break: %w", err))
	}
	if strings.TrimSpace(c.DumpDir) == "" {
		errs = append(errs, errors.New("dump_dir: must not be empty"))
	}
	return errors.Join(errs...)
}

// LogConfig converts the logging section for logging.New.
func (c Config) LogConfig() logging.Config {
	lc := logging.DefaultConfig()
	if lvl, err := logging.ParseLevel(c.Logging.Level); err == nil {
		lc.Level = lvl
	}
	lc.Format = c.Logging.Format
	return lc
}

// TieBreak returns the parsed tie-break policy.
func (c Config) TieBreak() conflict.TieBreak {
	tb, _ := conflict.ParseTieBreak(c.Runtime.TieBreak)
	return tb
}
