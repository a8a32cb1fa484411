//go:build linux

// Package gpio drives a single output line through the Linux GPIO character
// device.
package gpio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/warthog618/go-gpiocdev"
)

// DefaultChips are tried in order. The Raspberry Pi 5 header moved from
// gpiochip4 to gpiochip0 between kernel releases.
var DefaultChips = []string{"gpiochip0", "gpiochip4"}

// Option configures a Pin.
type Option func(*Pin)

// WithChips sets the chips to try.
func WithChips(chips ...string) Option {
	return func(p *Pin) {
		p.chips = chips
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pin) {
		p.log = log
	}
}

// WithConsumer sets the consumer label shown by gpioinfo.
func WithConsumer(name string) Option {
	return func(p *Pin) {
		p.consumer = name
	}
}

// Pin is a GPIO line requested as an output
type Pin struct {
	offset   int
	chips    []string
	consumer string
	log      zerolog.Logger

	mu    sync.Mutex
	chip  string
	line  *gpiocdev.Line
	value int
}

// NewPin requests line offset as an output driven low, on the first chip
// that has it.
func NewPin(offset int, opts ...Option) (*Pin, error) {
	p := &Pin{
		offset:   offset,
		chips:    DefaultChips,
		consumer: "ws2818-matrix",
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if len(p.chips) == 0 {
		return nil, errors.New("no gpio chips to try")
	}

	var errs []error
	for _, chip := range p.chips {
		line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer(p.consumer))
		if err != nil {
			p.log.Debug().Err(err).Str("chip", chip).Int("offset", offset).Msg("line request failed")
			errs = append(errs, fmt.Errorf("%s: %w", chip, err))
			continue
		}
		p.chip = chip
		p.line = line
		p.log.Debug().Str("chip", chip).Int("offset", offset).Msg("requested output line")
		return p, nil
	}
	return nil, fmt.Errorf("failed to request gpio %d: %w", offset, errors.Join(errs...))
}

// String returns e.g. "gpiochip0:17".
func (p *Pin) String() string {
	return fmt.Sprintf("%s:%d", p.chip, p.offset)
}

// Close releases the line
func (p *Pin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.line == nil {
		return nil
	}
	err := p.line.Close()
	p.line = nil
	if err != nil {
		return fmt.Errorf("failed to release %s: %w", p, err)
	}
	return nil
}

// SetValue drives the line to 0 or 1
func (p *Pin) SetValue(value int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.line == nil {
		return fmt.Errorf("gpio %d closed", p.offset)
	}
	if err := p.line.SetValue(value); err != nil {
		return fmt.Errorf("failed to set %s to %d: %w", p, value, err)
	}
	p.value = value
	return nil
}

// Value returns the last value driven onto the line
func (p *Pin) Value() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Pulse drives the line high for d, then low
func (p *Pin) Pulse(d time.Duration) error {
	if err := p.SetValue(1); err != nil {
		return err
	}
	time.Sleep(d)
	return p.SetValue(0)
}
