// Package config loads server settings from an optional TOML file and the
// environment.
//
// Settings are resolved in order: built-in defaults, then the file named by
// --config or CANNY_MCP_CONFIG, then CANNY_MCP_LOG_LEVEL. A missing file is an
// error only when it was named explicitly.
//
// Example file:
//
//	log_level = "debug"
//
//	[canny]
//	lower = 0.2
//	upper = 0.6
//	blur_size = 5
//	blur_sigma = 1.4
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/anthonynsimon/bild/convolution"
	"github.com/charmbracelet/log"

	"github.com/ironsheep/canny-tools-mcp/internal/canny"
	"github.com/ironsheep/canny-tools-mcp/internal/filter"
)

// Environment variables read by Load.
const (
	EnvConfigPath = "CANNY_MCP_CONFIG"
	EnvLogLevel   = "CANNY_MCP_LOG_LEVEL"
)

// ErrInvalid is returned when a loaded setting is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the server settings.
type Config struct {
	LogLevel string `toml:"log_level"`
	Canny    Canny  `toml:"canny"`
}

// Canny holds the detector defaults applied when a tool call leaves a
// parameter unset.
type Canny struct {
	Lower     float64 `toml:"lower"`
	Upper     float64 `toml:"upper"`
	BlurSize  int     `toml:"blur_size"`
	BlurSigma float64 `toml:"blur_sigma"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		Canny: Canny{
			Lower:     canny.DefaultLowerThreshold,
			Upper:     canny.DefaultUpperThreshold,
			BlurSize:  canny.DefaultBlurSize,
			BlurSigma: math.Sqrt(canny.DefaultBlurVariance),
		},
	}
}

// Load resolves the configuration. path may be empty, in which case
// CANNY_MCP_CONFIG is consulted; when both are empty only defaults and
// environment overrides apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.decode(string(data)); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decode(data string) error {
	md, err := toml.Decode(data, c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	return c.Canny.Validate()
}

// Level parses LogLevel.
func (c Config) Level() (log.Level, error) {
	level, err := log.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return level, nil
}

// MaxBlurSize is the largest accepted blur_size.
const MaxBlurSize = 101

// Validate checks that the detector settings are finite and in range and that
// they produce a usable Gaussian kernel.
func (c Canny) Validate() error {
	for _, t := range []float64{c.Lower, c.Upper} {
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return fmt.Errorf("%w: thresholds must be finite and non-negative, got %v and %v", ErrInvalid, c.Lower, c.Upper)
		}
	}
	if c.BlurSize <= 0 || c.BlurSize%2 == 0 || c.BlurSize > MaxBlurSize {
		return fmt.Errorf("%w: blur_size must be odd and between 1 and %d, got %d", ErrInvalid, MaxBlurSize, c.BlurSize)
	}
	if !(c.BlurSigma > 0) || math.IsInf(c.BlurSigma, 0) {
		return fmt.Errorf("%w: blur_sigma must be positive and finite, got %v", ErrInvalid, c.BlurSigma)
	}
	if _, err := c.Kernel(); err != nil {
		return fmt.Errorf("%w: blur_sigma %v: %w", ErrInvalid, c.BlurSigma, err)
	}
	return nil
}

// Kernel builds the square Gaussian blur kernel described by BlurSize and
// BlurSigma.
func (c Canny) Kernel() (*convolution.Kernel, error) {
	v := c.BlurSigma * c.BlurSigma
	return filter.GaussianKernel(c.BlurSize, c.BlurSize, [2]float64{v, v})
}

// Parameters builds detector parameters from the Canny section. Settings
// that fail Validate leave the detector's default kernel in place.
func (c Canny) Parameters() canny.Parameters {
	b := canny.NewBuilder().
		LowerThreshold(c.Lower).
		UpperThreshold(c.Upper)
	if k, err := c.Kernel(); err == nil {
		b = b.Kernel(k)
	}
	return b.Build()
}
