// Package glyph holds the 5x5 digit font used on small LED matrices.
package glyph

// Size is the width and height of every glyph.
const Size = 5

// Bitmap is a 5x5 glyph. Row 0 is the top row (y = 0) and bit 4 of a row is
// the leftmost column (x = 0).
type Bitmap [Size]uint8

// On reports whether the cell at (x, y) is lit. Cells outside the glyph are
// off.
func (b Bitmap) On(x, y int) bool {
	if x < 0 || x >= Size || y < 0 || y >= Size {
		return false
	}
	return b[y]&(1<<(Size-1-x)) != 0
}

// Set lights or clears the cell at (x, y).
func (b *Bitmap) Set(x, y int, on bool) {
	if x < 0 || x >= Size || y < 0 || y >= Size {
		return
	}
	mask := uint8(1) << (Size - 1 - x)
	if on {
		b[y] |= mask
	} else {
		b[y] &^= mask
	}
}

// Cells calls fn for every lit cell, row by row.
func (b Bitmap) Cells(fn func(x, y int)) {
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b.On(x, y) {
				fn(x, y)
			}
		}
	}
}

// Count returns the number of lit cells.
func (b Bitmap) Count() int {
	n := 0
	b.Cells(func(int, int) { n++ })
	return n
}

// String draws the glyph with '#' for lit cells and '.' for dark ones.
func (b Bitmap) String() string {
	buf := make([]byte, 0, Size*(Size+1))
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b.On(x, y) {
				buf = append(buf, '#')
			} else {
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}

// Digits are the decimal digits 0-9.
var Digits = [10]Bitmap{
	{0b01110, 0b10001, 0b10001, 0b10001, 0b01110},
	{0b00100, 0b01100, 0b00100, 0b00100, 0b01110},
	{0b11110, 0b00001, 0b01110, 0b10000, 0b11111},
	{0b11110, 0b00001, 0b01110, 0b00001, 0b11110},
	{0b10010, 0b10010, 0b11111, 0b00010, 0b00010},
	{0b11111, 0b10000, 0b11110, 0b00001, 0b11110},
	{0b01110, 0b10000, 0b11110, 0b10001, 0b01110},
	{0b11111, 0b00001, 0b00010, 0b00100, 0b00100},
	{0b01110, 0b10001, 0b01110, 0b10001, 0b01110},
	{0b01110, 0b10001, 0b01111, 0b00001, 0b01110},
}

// Lookup returns the glyph for digit d.
func Lookup(d int) (Bitmap, bool) {
	if d < 0 || d >= len(Digits) {
		return Bitmap{}, false
	}
	return Digits[d], true
}
