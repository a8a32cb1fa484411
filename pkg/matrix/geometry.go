package matrix

import "fmt"

// Geometry is the size of a serpentine-wired matrix. Wiring starts at
// (0, 0); even rows run left to right and odd rows run back right to left.
type Geometry struct {
	Width  int
	Height int
}

// Validate checks that both dimensions are positive.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrGeometry, g.Width, g.Height)
	}
	return nil
}

// Len returns the number of LEDs.
func (g Geometry) Len() int {
	return g.Width * g.Height
}

// Contains reports whether (x, y) is on the matrix.
func (g Geometry) Contains(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Index returns the position in the LED chain of the LED at (x, y).
// Coordinates off the matrix return ErrOutOfBounds; they are never clamped
// or wrapped.
func (g Geometry) Index(x, y int) (int, error) {
	if !g.Contains(x, y) {
		return 0, fmt.Errorf("%w: (%d, %d) on %dx%d", ErrOutOfBounds, x, y, g.Width, g.Height)
	}
	if y%2 == 0 {
		return y*g.Width + x, nil
	}
	return y*g.Width + (g.Width - 1 - x), nil
}

// String returns e.g. "5x5".
func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}
