package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fkcurrie/ws2818-matrix/internal/types"
	"github.com/fkcurrie/ws2818-matrix/pkg/matrix"
	"github.com/fkcurrie/ws2818-matrix/pkg/ws2818"
)

// Config represents the application configuration
type Config struct {
	Display   types.DisplayConfig   `yaml:"display"`
	Driver    types.DriverConfig    `yaml:"driver"`
	SPI       types.SPIConfig       `yaml:"spi,omitempty"`
	Countdown types.CountdownConfig `yaml:"countdown"`
}

// Load loads the configuration from a file. Fields missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file gives the defaults and
// found is false. A file that exists but does not parse or validate is an
// error.
func LoadOrDefault(path string) (cfg *Config, found bool, err error) {
	cfg, err = Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Save writes the configuration to a file
func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// DefaultConfig returns the default configuration: the 5x5 board on GPIO 7
// counting down once a second.
func DefaultConfig() *Config {
	return &Config{
		Display: types.DisplayConfig{
			Width:  5,
			Height: 5,
			Pin:    7,
		},
		Driver: types.DriverConfig{
			Backend:    types.BackendSim,
			ResetGapUs: int(ws2818.DefaultResetGap / time.Microsecond),
		},
		SPI: types.SPIConfig{
			Port:       "",
			EnableLine: -1,
		},
		Countdown: types.CountdownConfig{
			Start:      9,
			IntervalMs: 1000,
			Color:      types.RGB{R: 100},
			Mode:       "countdown",
			Brightness: 1,
		},
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := c.Geometry().Validate(); err != nil {
		return err
	}
	if c.Display.Pin < 0 || c.Display.Pin > 47 {
		return fmt.Errorf("pin %d out of range", c.Display.Pin)
	}
	switch c.Driver.Backend {
	case types.BackendSim, types.BackendSPI:
	default:
		return fmt.Errorf("unknown backend %q", c.Driver.Backend)
	}
	if err := c.Link().Validate(); err != nil {
		return err
	}
	if c.Countdown.Start < 0 || c.Countdown.Start > 9 {
		return fmt.Errorf("countdown start %d is not a digit", c.Countdown.Start)
	}
	if c.Countdown.IntervalMs <= 0 {
		return fmt.Errorf("countdown interval must be positive")
	}
	switch c.Countdown.Mode {
	case "countdown", "traffic":
	default:
		return fmt.Errorf("unknown mode %q", c.Countdown.Mode)
	}
	if c.Countdown.Brightness < 0 || c.Countdown.Brightness > 1 {
		return fmt.Errorf("brightness must be between 0 and 1")
	}
	return nil
}

// Geometry returns the matrix size
func (c *Config) Geometry() matrix.Geometry {
	return matrix.Geometry{Width: c.Display.Width, Height: c.Display.Height}
}

// Link returns the one-wire link settings
func (c *Config) Link() ws2818.Config {
	return ws2818.Config{
		ResetGap: time.Duration(c.Driver.ResetGapUs) * time.Microsecond,
	}
}

// Interval returns the countdown tick
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Countdown.IntervalMs) * time.Millisecond
}
