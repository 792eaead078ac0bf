// Package render draws stimuli as images of coloured plates and writes them
// out as stills or as an animated PNG replay of a session.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/kovidgoyal/trivector/colorspace"
)

var _ = fmt.Print

// Pixel is an opaque 8-bit RGB colour.
type Pixel struct {
	R, G, B uint8
}

func (c Pixel) AsSharp() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Pixel) String() string {
	return fmt.Sprintf("Pixel{%02X %02X %02X}", c.R, c.G, c.B)
}

func (c Pixel) RGBA() (r, g, b, a uint32) {
	return uint32(c.R) * 0x101, uint32(c.G) * 0x101, uint32(c.B) * 0x101, 0xffff
}

func to_byte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// PixelFromRGB quantizes linear drive values in [0, 1], clipping anything
// outside the display gamut.
func PixelFromRGB(c colorspace.RGB) Pixel {
	return Pixel{to_byte(c.R), to_byte(c.G), to_byte(c.B)}
}

// pixel_model drops alpha after un-premultiplying, so translucent colours
// keep their hue rather than darkening.
func pixel_model(c color.Color) color.Color {
	switch v := c.(type) {
	case Pixel:
		return v
	case color.NRGBA:
		return Pixel{v.R, v.G, v.B}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pixel{n.R, n.G, n.B}
}

var PixelModel color.Model = color.ModelFunc(pixel_model)

// Canvas is an in-memory image with three bytes per pixel and no alpha.
type Canvas struct {
	// Pix holds the pixels in R, G, B order. The pixel at (x, y) starts at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*3].
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

func NewCanvas(r image.Rectangle) *Canvas {
	return &Canvas{
		Pix:    make([]uint8, 3*r.Dx()*r.Dy()),
		Stride: 3 * r.Dx(),
		Rect:   r,
	}
}

func (p *Canvas) ColorModel() color.Model { return PixelModel }

func (p *Canvas) Bounds() image.Rectangle { return p.Rect }

func (p *Canvas) Opaque() bool { return true }

func (p *Canvas) At(x, y int) color.Color { return p.PixelAt(x, y) }

func (p *Canvas) PixelAt(x, y int) Pixel {
	if !(image.Point{x, y}.In(p.Rect)) {
		return Pixel{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	return Pixel{s[0], s[1], s[2]}
}

func (p *Canvas) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

func (p *Canvas) Set(x, y int, c color.Color) {
	p.SetPixel(x, y, PixelModel.Convert(c).(Pixel))
}

func (p *Canvas) SetPixel(x, y int, c Pixel) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	s[0], s[1], s[2] = c.R, c.G, c.B
}

// fill_span sets pixels [x0, x1) of row y, which must lie inside the canvas.
func (p *Canvas) fill_span(y, x0, x1 int, c Pixel) {
	row := p.Pix[p.PixOffset(x0, y):p.PixOffset(x1, y)]
	for i := 0; i < len(row); i += 3 {
		row[i], row[i+1], row[i+2] = c.R, c.G, c.B
	}
}
