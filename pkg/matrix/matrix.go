// Package matrix is a frame buffer for a serpentine WS2818 LED matrix.
//
// Typical use is Clear, then SetPixelXY or RenderDigit, then Commit:
//
//	m, err := matrix.Open(matrix.Geometry{Width: 5, Height: 5}, 7, pio.Hardware()...)
//	if err != nil {
//		return err
//	}
//	m.Clear()
//	m.RenderDigit(3, matrix.LedColor{G: 32})
//	m.Commit()
//
// A Matrix has a single owner and does no locking.
package matrix

import (
	"errors"
	"fmt"
	"time"

	"github.com/fkcurrie/ws2818-matrix/pkg/glyph"
	"github.com/fkcurrie/ws2818-matrix/pkg/pio"
	"github.com/fkcurrie/ws2818-matrix/pkg/ws2818"
)

// Matrix errors.
var (
	ErrOutOfBounds     = errors.New("coordinates out of bounds")
	ErrInvalidDigit    = errors.New("invalid digit")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrGeometry        = errors.New("invalid geometry")
	ErrClosed          = errors.New("matrix closed")
)

// LedColor is the colour of one LED.
type LedColor = ws2818.Color

// Link carries a frame to the LEDs. Send blocks until the last bit is on the
// wire; ResetGap is how long the line must then stay idle before the frame
// latches.
type Link interface {
	Send(grb []uint32) error
	ResetGap() time.Duration
	Close() error
}

// Option configures a Matrix.
type Option func(*Matrix)

// WithSleep replaces time.Sleep for the reset gap wait.
func WithSleep(sleep func(time.Duration)) Option {
	return func(m *Matrix) {
		m.sleep = sleep
	}
}

// Matrix holds one colour per LED in chain order and commits them to a
// Link.
type Matrix struct {
	geom  Geometry
	buf   []LedColor
	words []uint32
	link  Link
	sleep func(time.Duration)
}

// New creates a zeroed frame buffer for g that commits to link.
func New(g Geometry, link Link, opts ...Option) (*Matrix, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if link == nil {
		return nil, errors.New("link is nil")
	}
	m := &Matrix{
		geom:  g,
		buf:   make([]LedColor, g.Len()),
		words: make([]uint32, g.Len()),
		link:  link,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Open initialises a WS2818 link on pin using the first PIO block with a
// free state machine and returns a matrix driving it. An error wrapping
// pio.ErrNoStateMachine means the LEDs cannot be driven at all.
func Open(g Geometry, pin uint8, blocks ...pio.Block) (*Matrix, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	link, err := ws2818.Open(pin, blocks...)
	if err != nil {
		return nil, fmt.Errorf("failed to open link: %w", err)
	}
	return New(g, link)
}

// MustOpen is like Open but panics on error.
func MustOpen(g Geometry, pin uint8, blocks ...pio.Block) *Matrix {
	m, err := Open(g, pin, blocks...)
	if err != nil {
		panic(err)
	}
	return m
}

// Geometry returns the matrix size.
func (m *Matrix) Geometry() Geometry {
	return m.geom
}

// Clear turns every LED off in the buffer. The LEDs change on Commit.
func (m *Matrix) Clear() {
	for i := range m.buf {
		m.buf[i] = LedColor{}
	}
}

// Fill sets every LED to c.
func (m *Matrix) Fill(c LedColor) {
	for i := range m.buf {
		m.buf[i] = c
	}
}

// SetPixel sets the LED at chain position index.
func (m *Matrix) SetPixel(index int, c LedColor) error {
	if index < 0 || index >= len(m.buf) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(m.buf))
	}
	m.buf[index] = c
	return nil
}

// SetPixelXY sets the LED at (x, y).
func (m *Matrix) SetPixelXY(x, y int, c LedColor) error {
	i, err := m.geom.Index(x, y)
	if err != nil {
		return err
	}
	return m.SetPixel(i, c)
}

// RenderDigit draws digit in the top left corner. Only the glyph's lit cells
// are written, so call Clear first to remove a previous digit.
func (m *Matrix) RenderDigit(digit int, c LedColor) error {
	return m.RenderDigitAt(digit, 0, 0, c)
}

// RenderDigitAt draws digit with its top left corner at (x0, y0). Nothing is
// written when part of the glyph would fall off the matrix.
func (m *Matrix) RenderDigitAt(digit, x0, y0 int, c LedColor) error {
	g, ok := glyph.Lookup(digit)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidDigit, digit)
	}

	var err error
	g.Cells(func(x, y int) {
		if err == nil {
			_, err = m.geom.Index(x0+x, y0+y)
		}
	})
	if err != nil {
		return fmt.Errorf("digit %d does not fit: %w", digit, err)
	}

	g.Cells(func(x, y int) {
		if err == nil {
			err = m.SetPixelXY(x0+x, y0+y, c)
		}
	})
	return err
}

// Commit sends the whole buffer and waits out the reset gap, so the frame
// has latched when Commit returns and the next Commit cannot cut into the
// gap. It is not cancellable.
func (m *Matrix) Commit() error {
	if m.link == nil {
		return ErrClosed
	}
	for i, c := range m.buf {
		m.words[i] = c.GRB()
	}
	if err := m.link.Send(m.words); err != nil {
		return fmt.Errorf("failed to send frame: %w", err)
	}
	m.sleep(m.link.ResetGap())
	return nil
}

// Close releases the link.
func (m *Matrix) Close() error {
	if m.link == nil {
		return nil
	}
	err := m.link.Close()
	m.link = nil
	if err != nil {
		return fmt.Errorf("failed to close link: %w", err)
	}
	return nil
}
