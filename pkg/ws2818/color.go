package ws2818

import "image/color"

// Color is one LED's 24-bit colour. There is no alpha channel and no gamma
// or brightness correction; the values go to the wire as given.
type Color struct {
	R, G, B uint8
}

// Common colours.
var (
	Off    = Color{}
	Red    = Color{R: 0xff}
	Green  = Color{G: 0xff}
	Blue   = Color{B: 0xff}
	Yellow = Color{R: 0xff, G: 0xff}
	White  = Color{R: 0xff, G: 0xff, B: 0xff}
)

// RGB returns the colour with the given channel values.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// GRB packs the colour in wire order, left aligned for a 24-bit autopull
// that shifts out MSB first:
//
//	g<<24 | r<<16 | b<<8
func (c Color) GRB() uint32 {
	return uint32(c.G)<<24 | uint32(c.R)<<16 | uint32(c.B)<<8
}

// FromGRB unpacks a word produced by GRB. The low byte is ignored.
func FromGRB(w uint32) Color {
	return Color{G: uint8(w >> 24), R: uint8(w >> 16), B: uint8(w >> 8)}
}

// RGBA implements color.Color. LEDs are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = 0xffff
	return
}

// FromColor converts any color.Color, dropping alpha after premultiplication.
func FromColor(c color.Color) Color {
	if lc, ok := c.(Color); ok {
		return lc
	}
	r, g, b, _ := c.RGBA()
	return Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}
