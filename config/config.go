// Package config loads the settings of every stage from a single YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/arnodel/boundedstream/chunker"
	"github.com/arnodel/boundedstream/filereader"
	"github.com/arnodel/boundedstream/jsonextract"
	"github.com/arnodel/boundedstream/lines"
	"github.com/arnodel/boundedstream/streamerr"
)

// Config represents the structure of the configuration file.
type Config struct {
	Chunker chunker.Config     `yaml:"chunker"`
	JSON    jsonextract.Config `yaml:"json"`
	File    filereader.Config  `yaml:"file"`
	Lines   lines.Config       `yaml:"lines"`
	Log     LogConfig          `yaml:"log"`
	Output  OutputConfig       `yaml:"output"`
}

type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level" default:"info"`
}

type OutputConfig struct {
	// Color is one of auto, always or never.
	Color string `yaml:"color" default:"auto"`
	// Rate limits the number of units written per second, 0 means no limit.
	Rate float64 `yaml:"rate"`
	// Decompress is auto or none.
	Decompress string `yaml:"decompress" default:"auto"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	defaults.MustSet(cfg)
	return cfg
}

// Load reads the configuration file at path.  Missing settings take their
// default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document into a validated Config.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and reports all the problems found.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs,
		c.Chunker.Validate(),
		c.JSON.Validate(),
		c.File.Validate(),
		c.Lines.Validate(),
	)
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("output: %w: color must be auto, always or never, got %q", streamerr.ErrInvalidConfig, c.Output.Color))
	}
	switch c.Output.Decompress {
	case "auto", "none":
	default:
		errs = append(errs, fmt.Errorf("output: %w: decompress must be auto or none, got %q", streamerr.ErrInvalidConfig, c.Output.Decompress))
	}
	if c.Output.Rate < 0 {
		errs = append(errs, fmt.Errorf("output: %w: rate must not be negative, got %g", streamerr.ErrInvalidConfig, c.Output.Rate))
	}
	return errors.Join(errs...)
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return 0, fmt.Errorf("log: %w: unknown level %q", streamerr.ErrInvalidConfig, name)
	}
	return level, nil
}
