// Package ws2818 drives WS2818/WS2812-family one-wire RGB LEDs from a PIO
// state machine.
//
// A Link owns one claimed state machine running Program. Colours go to the
// wire as GRB words; after each frame the line must stay low for the reset
// gap before the LEDs latch.
package ws2818

import (
	"errors"
	"fmt"
	"time"

	"github.com/fkcurrie/ws2818-matrix/pkg/pio"
)

const (
	// DefaultFrequency is the bit rate of WS2818b and WS2812B parts. The
	// program's 2 and 7 cycle high times only meet their timing at this
	// rate, so it is fixed.
	DefaultFrequency = 800_000
	// DefaultResetGap is the low time that latches a frame. Older parts
	// latch after 50 µs but current WS2812B and WS2818b need 280 µs.
	DefaultResetGap = 280 * time.Microsecond
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("ws2818: link closed")

// Config holds the link settings.
type Config struct {
	ResetGap time.Duration
}

// DefaultConfig returns a 280 µs reset gap.
func DefaultConfig() Config {
	return Config{
		ResetGap: DefaultResetGap,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.ResetGap < 50*time.Microsecond {
		return fmt.Errorf("reset gap %v shorter than 50µs", c.ResetGap)
	}
	return nil
}

// Link is an initialised one-wire output.
type Link struct {
	binding pio.Binding
	cfg     Config
	timing  Timing
	closed  bool
}

// Open claims a state machine on the first block with one free, loads
// Program and starts it on pin at the default configuration. Blocks are
// tried in order, so pass the primary block first.
//
// When no block has a free state machine Open returns an error wrapping
// pio.ErrNoStateMachine. The caller cannot drive the LEDs and should stop.
func Open(pin uint8, blocks ...pio.Block) (*Link, error) {
	return OpenConfig(pin, DefaultConfig(), blocks...)
}

// OpenConfig is Open with an explicit configuration. On error nothing stays
// claimed or loaded.
func OpenConfig(pin uint8, cfg Config, blocks ...pio.Block) (*Link, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	b, err := pio.Claim(blocks...)
	if err != nil {
		return nil, fmt.Errorf("failed to claim state machine: %w", err)
	}
	b.Pin = pin

	offset, err := b.Block.AddProgram(Program)
	if err != nil {
		b.StateMachine.Unclaim()
		return nil, fmt.Errorf("failed to load program on pio%d: %w", b.Block.Index(), err)
	}
	b.Offset = offset

	whole, frac, err := pio.ClkDivFromFrequency(DefaultFrequency*CyclesPerBit, b.Block.ClockHz())
	if err != nil {
		release(b)
		return nil, fmt.Errorf("failed to compute clock divider: %w", err)
	}

	smCfg := pio.Config{
		WrapTarget:    offset + Program.WrapTarget,
		Wrap:          offset + Program.Wrap,
		SidesetBits:   Program.SidesetBits,
		SidesetPin:    pin,
		OutShiftRight: false,
		Autopull:      true,
		PullThreshold: 24,
		JoinTx:        true,
		ClkDivInt:     whole,
		ClkDivFrac:    frac,
	}
	if err := b.StateMachine.Init(offset, smCfg); err != nil {
		release(b)
		return nil, fmt.Errorf("failed to init %s: %w", b, err)
	}
	b.StateMachine.SetEnabled(true)

	return &Link{
		binding: b,
		cfg:     cfg,
		timing:  NewTiming(DefaultFrequency),
	}, nil
}

// release frees the program and the state machine of b.
func release(b pio.Binding) {
	b.Block.RemoveProgram(Program, b.Offset)
	b.StateMachine.Unclaim()
}

// MustOpen is like Open but panics when the LEDs cannot be driven.
func MustOpen(pin uint8, blocks ...pio.Block) *Link {
	l, err := Open(pin, blocks...)
	if err != nil {
		panic(err)
	}
	return l
}

// Binding returns the claimed block, state machine, offset and pin.
func (l *Link) Binding() pio.Binding {
	return l.binding
}

// Timing returns the pulse widths on the wire.
func (l *Link) Timing() Timing {
	return l.timing
}

// Send queues the GRB words and blocks until the last bit has left the pin.
// It does not wait for the reset gap.
func (l *Link) Send(grb []uint32) error {
	if l.closed {
		return ErrClosed
	}
	sm := l.binding.StateMachine
	for _, w := range grb {
		sm.Put(w)
	}
	if err := sm.Drain(); err != nil {
		return fmt.Errorf("failed to drain %s: %w", l.binding, err)
	}
	return nil
}

// SendColors is Send for a slice of colours.
func (l *Link) SendColors(colors []Color) error {
	grb := make([]uint32, len(colors))
	for i, c := range colors {
		grb[i] = c.GRB()
	}
	return l.Send(grb)
}

// ResetGap returns how long the line must stay low after Send.
func (l *Link) ResetGap() time.Duration {
	return l.cfg.ResetGap
}

// Close stops the state machine and releases it and the program's
// instruction memory.
func (l *Link) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.binding.StateMachine.SetEnabled(false)
	release(l.binding)
	return nil
}

// String returns the binding, e.g. "pio0 sm1 gpio7".
func (l *Link) String() string {
	return l.binding.String()
}
