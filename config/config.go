// Package config loads logbar settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/jongio/logbar/logutil"
	"github.com/jongio/logbar/progress"
)

// Environment variables read by ApplyEnv.
const (
	EnvLevel   = "LOGBAR_LEVEL"
	EnvNoColor = "LOGBAR_NO_COLOR"
	EnvStyle   = "LOGBAR_STYLE"
	// NO_COLOR is the cross-tool convention, see https://no-color.org.
	EnvNoColorStd = "NO_COLOR"
)

// Defaults.
const (
	DefaultLevel           = "debug"
	DefaultPadding         = 2
	DefaultAnimationPeriod = 100 * time.Millisecond
	DefaultHistoryLimit    = 1000
	DefaultStyle           = "block"
)

// ErrInvalidPath is returned for config paths that escape their directory.
var ErrInvalidPath = errors.New("invalid config path")

// Config holds the settings shared by the logger, column printers and progress bars.
type Config struct {
	Level           string        `yaml:"level"`
	NoColor         bool          `yaml:"no_color"`
	Padding         int           `yaml:"padding"`
	AnimationPeriod time.Duration `yaml:"animation_period"`
	// MaxRate caps AUTO-mode redraws per second. Zero draws every step.
	MaxRate       float64 `yaml:"max_rate"`
	HistoryLimit  int     `yaml:"history_limit"`
	Style         string  `yaml:"style"`
	Fill          string  `yaml:"fill,omitempty"`
	ShowLeftSteps bool    `yaml:"show_left_steps"`
	Debug         bool    `yaml:"debug,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Level:           DefaultLevel,
		Padding:         DefaultPadding,
		AnimationPeriod: DefaultAnimationPeriod,
		HistoryLimit:    DefaultHistoryLimit,
		Style:           DefaultStyle,
		ShowLeftSteps:   true,
	}
}

// Load reads the YAML file at path over the defaults. A missing file yields the defaults.
// The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := validatePath(path); err != nil {
		return cfg, err
	}

	// #nosec G304 -- path validated by validatePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment overrides onto c.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvLevel)); v != "" {
		c.Level = v
	}
	if v := os.Getenv(EnvNoColor); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.NoColor = b
		}
	}
	if os.Getenv(EnvNoColorStd) != "" {
		c.NoColor = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvStyle)); v != "" {
		c.Style = v
	}
	if v := os.Getenv(logutil.EnvDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, ok := logutil.LookupLevel(c.Level); !ok {
		return fmt.Errorf("unknown level %q", c.Level)
	}
	if c.Padding < 0 {
		return fmt.Errorf("padding must not be negative, got %d", c.Padding)
	}
	if c.AnimationPeriod < 0 {
		return fmt.Errorf("animation_period must not be negative, got %s", c.AnimationPeriod)
	}
	if c.MaxRate < 0 {
		return fmt.Errorf("max_rate must not be negative, got %g", c.MaxRate)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit)
	}
	if _, err := progress.LookupStyle(c.Style); err != nil {
		return err
	}
	if c.Fill != "" && utf8.RuneCountInString(c.Fill) != 1 {
		return fmt.Errorf("fill must be a single character, got %q", c.Fill)
	}
	return nil
}

// LogLevel returns the parsed threshold.
func (c Config) LogLevel() logutil.Level {
	return logutil.ParseLevel(c.Level)
}

// FillRune returns the configured fill rune, or 0 to keep the style's own.
func (c Config) FillRune() rune {
	if c.Fill == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(c.Fill)
	return r
}

// validatePath rejects empty paths and parent directory references.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("%w: path contains parent directory reference", ErrInvalidPath)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path: %w", ErrInvalidPath, err)
	}
	resolved, err := filepath.EvalSymlinks(filepath.Clean(abs))
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("%w: cannot resolve symbolic links: %w", ErrInvalidPath, err)
		}
		return nil
	}
	if strings.Contains(resolved, "..") {
		return fmt.Errorf("%w: resolved path contains parent directory reference", ErrInvalidPath)
	}
	return nil
}
