// Package spiled sends frames to a WS2812-family LED chain from a Linux host
// by NRZ-encoding them onto an SPI MOSI line.
package spiled

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nrzled"

	"github.com/fkcurrie/ws2818-matrix/pkg/ws2818"
)

// Enabler drives a level shifter's output enable. A gpio.Pin satisfies it.
// If it is also an io.Closer, Close releases it.
type Enabler interface {
	SetValue(value int) error
}

// Option configures a Link.
type Option func(*Link)

// WithEnable drives e high while a frame is on the wire.
func WithEnable(e Enabler) Option {
	return func(l *Link) {
		l.enable = e
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Link) {
		l.log = log
	}
}

// WithResetGap overrides the latch time reported by ResetGap.
func WithResetGap(d time.Duration) Option {
	return func(l *Link) {
		l.gap = d
	}
}

// Link is an SPI-attached LED chain of fixed length.
type Link struct {
	mu     sync.Mutex
	dev    *nrzled.Dev
	n      int
	rgb    []byte
	enable Enabler
	gap    time.Duration
	log    zerolog.Logger
}

// Open prepares an nrzled encoder for n LEDs at 800 kHz on port.
func Open(port spi.Port, n int, opts ...Option) (*Link, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", n)
	}
	l := &Link{
		n:   n,
		rgb: make([]byte, 3*n),
		gap: ws2818.DefaultResetGap,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: n,
		Channels:  3,
		Freq:      ws2818.DefaultFrequency * physic.Hertz,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create nrzled device: %w", err)
	}
	l.dev = dev
	l.log.Info().Str("dev", dev.String()).Int("leds", n).Msg("spi led link ready")
	return l, nil
}

// Send writes one frame of GRB words as produced by ws2818.Color.GRB.
func (l *Link) Send(grb []uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dev == nil {
		return ws2818.ErrClosed
	}
	if len(grb) != l.n {
		return fmt.Errorf("frame has %d LEDs, want %d", len(grb), l.n)
	}
	// nrzled takes RGB and reorders to GRB itself.
	for i, w := range grb {
		c := ws2818.FromGRB(w)
		l.rgb[3*i], l.rgb[3*i+1], l.rgb[3*i+2] = c.R, c.G, c.B
	}

	if err := l.setEnable(1); err != nil {
		return err
	}
	_, err := l.dev.Write(l.rgb)
	if err != nil {
		l.setEnable(0)
		return fmt.Errorf("failed to write frame: %w", err)
	}
	l.log.Trace().Int("leds", l.n).Msg("frame sent")
	return l.setEnable(0)
}

// ResetGap implements matrix.Link.
func (l *Link) ResetGap() time.Duration {
	return l.gap
}

// Close turns the LEDs off and releases the enable line.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dev == nil {
		return nil
	}
	l.setEnable(1)
	err := l.dev.Halt()
	l.setEnable(0)
	l.dev = nil
	if err != nil {
		return fmt.Errorf("failed to halt leds: %w", err)
	}
	if c, ok := l.enable.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// String returns the device name.
func (l *Link) String() string {
	if l.dev == nil {
		return "spiled{closed}"
	}
	return l.dev.String()
}

func (l *Link) setEnable(v int) error {
	if l.enable == nil {
		return nil
	}
	if err := l.enable.SetValue(v); err != nil {
		l.log.Error().Err(err).Int("value", v).Msg("failed to drive enable line")
		return fmt.Errorf("failed to drive enable line: %w", err)
	}
	return nil
}
