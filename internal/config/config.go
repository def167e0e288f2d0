// Package config loads the imageio command's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"github.com/oy3o/imageio"
	"github.com/oy3o/imageio/engine"
)

const appName = "imageio"

// Config holds the settings read from the TOML config files.
type Config struct {
	LogLevel              string `koanf:"log_level"`  // logrus level name (default: "warn")
	Endianness            string `koanf:"endianness"` // "native", "little" or "big"
	Threads               int    `koanf:"threads"`    // engine worker threads, 0 lets the engine decide
	InitialOutputCapacity int    `koanf:"initial_output_capacity"`
	MaxOutputBytes        int    `koanf:"max_output_bytes"`
	MaxInputBytes         int64  `koanf:"max_input_bytes"`
	MaxPixels             uint64 `koanf:"max_pixels"`
	DefaultFormat         string `koanf:"default_format"` // output format when none can be inferred
}

// Default returns the configuration used when no file sets a key.
func Default() *Config {
	return &Config{
		LogLevel:              "warn",
		Endianness:            "native",
		InitialOutputCapacity: imageio.DefaultInitialOutputCapacity,
		DefaultFormat:         "jxl",
	}
}

// Load reads the user config and then ./imageio.toml; later files win.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given TOML files in order, skipping missing ones.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/imageio/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./imageio.toml (highest priority)
		appName + ".toml",
	}
}

// Validate checks that every key parses.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := engine.ParseEndianness(c.Endianness); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := imageio.ParseFormat(c.DefaultFormat); err != nil {
		return fmt.Errorf("config: default_format: %w", err)
	}
	if c.Threads < 0 || c.InitialOutputCapacity < 0 || c.MaxOutputBytes < 0 || c.MaxInputBytes < 0 {
		return fmt.Errorf("config: sizes and thread counts must not be negative")
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (logrus.Level, error) {
	if c.LogLevel == "" {
		return logrus.WarnLevel, nil
	}
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel, fmt.Errorf("config: log_level: %w", err)
	}
	return lvl, nil
}

// Format returns the default output format.
func (c *Config) Format() imageio.Format {
	f, err := imageio.ParseFormat(c.DefaultFormat)
	if err != nil || f == imageio.Auto {
		return imageio.JPEGXL
	}
	return f
}

// Options converts the configuration into codec options.
func (c *Config) Options() imageio.Options {
	e, err := engine.ParseEndianness(c.Endianness)
	if err != nil {
		e = engine.NativeEndian
	}
	return imageio.DefaultOptions().
		WithEndianness(e).
		WithThreads(c.Threads).
		WithInitialOutputCapacity(c.InitialOutputCapacity).
		WithMaxOutputBytes(c.MaxOutputBytes).
		WithMaxInputBytes(c.MaxInputBytes).
		WithMaxPixels(c.MaxPixels)
}
