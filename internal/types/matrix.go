package types

import "github.com/fkcurrie/ws2818-matrix/pkg/ws2818"

// Matrix represents a display matrix
type Matrix interface {
	// Clear turns every LED off in the buffer
	Clear()
	// SetPixelXY sets the LED at the given coordinates
	SetPixelXY(x, y int, c ws2818.Color) error
	// RenderDigit draws a digit glyph
	RenderDigit(digit int, c ws2818.Color) error
	// Commit sends the buffer to the LEDs
	Commit() error
	// Close releases the matrix
	Close() error
}
