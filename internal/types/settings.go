package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fkcurrie/ws2818-matrix/pkg/ws2818"
)

// Backend selects what carries frames to the LEDs
type Backend string

const (
	// BackendSim runs the PIO program in the emulator
	BackendSim Backend = "sim"
	// BackendSPI NRZ-encodes frames onto a host SPI bus
	BackendSPI Backend = "spi"
)

// DisplayConfig represents the configuration for the matrix
type DisplayConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Pin    int `yaml:"pin"`
}

// DriverConfig represents the configuration for the LED link
type DriverConfig struct {
	Backend    Backend `yaml:"backend"`
	ResetGapUs int     `yaml:"reset_gap_us"`
}

// SPIConfig represents the host SPI transport
type SPIConfig struct {
	Port string `yaml:"port"`
	// EnableLine is the level shifter OE gpio, or -1 for none
	EnableLine int `yaml:"enable_line"`
}

// CountdownConfig represents the demo loop
type CountdownConfig struct {
	Start      int     `yaml:"start"`
	IntervalMs int     `yaml:"interval_ms"`
	Color      RGB     `yaml:"color"`
	Mode       string  `yaml:"mode"`
	Brightness float64 `yaml:"brightness"`
}

// RGB is a colour written as "#rrggbb" in config files
type RGB ws2818.Color

// String returns "#rrggbb"
func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseRGB parses "#rrggbb" or "rrggbb"
func ParseRGB(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %v", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MarshalText implements encoding.TextMarshaler
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *RGB) UnmarshalText(b []byte) error {
	v, err := ParseRGB(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Color returns the colour scaled by brightness in [0, 1]
func (c RGB) Color(brightness float64) ws2818.Color {
	if brightness <= 0 {
		return ws2818.Color{}
	}
	if brightness >= 1 {
		return ws2818.Color(c)
	}
	scale := func(v uint8) uint8 { return uint8(float64(v)*brightness + 0.5) }
	return ws2818.Color{R: scale(c.R), G: scale(c.G), B: scale(c.B)}
}
