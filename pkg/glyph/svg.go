//go:build !tinygo

package glyph

import (
	"fmt"
	"image"
	"io"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// svgScale is how many pixels each glyph cell is rasterised to.
const svgScale = 8

// FromSVG rasterises SVG artwork into a Bitmap. The drawing is scaled to
// fill the glyph and a cell is lit when at least half of it is covered.
func FromSVG(r io.Reader) (Bitmap, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return Bitmap{}, fmt.Errorf("failed to parse svg: %w", err)
	}

	const px = Size * svgScale
	img := image.NewRGBA(image.Rect(0, 0, px, px))
	icon.SetTarget(0, 0, px, px)
	scanner := rasterx.NewScannerGV(px, px, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(px, px, scanner), 1.0)

	var b Bitmap
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			var sum int
			for dy := 0; dy < svgScale; dy++ {
				for dx := 0; dx < svgScale; dx++ {
					sum += int(img.RGBAAt(x*svgScale+dx, y*svgScale+dy).A)
				}
			}
			b.Set(x, y, sum >= 0xff*svgScale*svgScale/2)
		}
	}
	return b, nil
}

// GoString returns the bitmap as a Go composite literal.
func (b Bitmap) GoString() string {
	return fmt.Sprintf("{0b%05b, 0b%05b, 0b%05b, 0b%05b, 0b%05b}", b[0], b[1], b[2], b[3], b[4])
}
