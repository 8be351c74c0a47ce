// Package config loads the chessarena TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Variants
const (
	VariantStandard = "standard"
	VariantChess960 = "chess960"
)

// Log output formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config is the top-level configuration file.
type Config struct {
	DataDir string        `toml:"data_dir"` // empty means the platform data directory
	Variant string        `toml:"variant"`
	Archive ArchiveConfig `toml:"archive"`
	Log     LogConfig     `toml:"log"`
}

// ArchiveConfig controls the game archive.
type ArchiveConfig struct {
	Enabled  bool `toml:"enabled"`
	InMemory bool `toml:"in_memory"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Variant: VariantStandard,
		Archive: ArchiveConfig{Enabled: true},
		Log: LogConfig{
			Level:  "info",
			Format: FormatConsole,
		},
	}
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	switch c.Variant {
	case VariantStandard, VariantChess960:
	default:
		return fmt.Errorf("%w: variant %q (want %s or %s)", ErrInvalidConfig, c.Variant, VariantStandard, VariantChess960)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// Chess960 reports whether new games start from a random Chess960 setup.
func (c Config) Chess960() bool {
	return c.Variant == VariantChess960
}

// NewLogger builds the root logger writing to w.
func NewLogger(cfg LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("%w: log.level %q", ErrInvalidConfig, cfg.Level)
	}
	if cfg.Format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
