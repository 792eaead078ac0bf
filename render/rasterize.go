package render

import (
	"image"
	"math"

	"github.com/kovidgoyal/go-parallel"

	"github.com/kovidgoyal/trivector/colorspace"
	"github.com/kovidgoyal/trivector/errs"
	"github.com/kovidgoyal/trivector/layout"
	"github.com/kovidgoyal/trivector/staircase"
)

// Shader colours one plate of a stimulus. *staircase.Engine satisfies it,
// drawing a fresh luminance for every call.
type Shader interface {
	Shade(s staircase.Stimulus, target bool) colorspace.RGB
}

// Flat shades every plate with the colours precomputed in the stimulus.
type Flat struct{}

func (Flat) Shade(s staircase.Stimulus, target bool) colorspace.RGB {
	if target {
		return s.TargetRGB
	}
	return s.BackgroundRGB
}

// Margin is the fraction of the shorter image side left empty around the
// plates.
const Margin = 0.04

type disc struct {
	cx, cy, r float64
	colour    Pixel
}

// Rasterize draws plates on a black width x height canvas, scaled to fit.
// The plates listed by the stimulus layout show the target colour, all others
// the background. Plate Y is horizontal and Z points up.
func Rasterize(plates []layout.Plate, s staircase.Stimulus, shader Shader, width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, errs.Newf(errs.ConfigInvalid, "cannot render a %dx%d image", width, height)
	}
	if len(plates) == 0 {
		return nil, errs.New(errs.ConfigInvalid, "no plates to render")
	}
	min_y, max_y := math.Inf(1), math.Inf(-1)
	min_z, max_z := math.Inf(1), math.Inf(-1)
	for _, p := range plates {
		min_y, max_y = min(min_y, p.Y-p.Radius), max(max_y, p.Y+p.Radius)
		min_z, max_z = min(min_z, p.Z-p.Radius), max(max_z, p.Z+p.Radius)
	}
	span_y, span_z := max(max_y-min_y, 1e-9), max(max_z-min_z, 1e-9)
	margin := Margin * float64(min(width, height))
	scale := min((float64(width)-2*margin)/span_y, (float64(height)-2*margin)/span_z)
	off_x := (float64(width) - scale*span_y) / 2
	off_y := (float64(height) - scale*span_z) / 2

	targets := s.Layout.Targets()
	discs := make([]disc, len(plates))
	// shading is sequential, shaders are not safe for concurrent use
	for i, p := range plates {
		discs[i] = disc{
			cx:     off_x + (p.Y-min_y)*scale,
			cy:     off_y + (max_z-p.Z)*scale,
			r:      p.Radius * scale,
			colour: PixelFromRGB(shader.Shade(s, targets[i])),
		}
	}
	img := NewCanvas(image.Rect(0, 0, width, height))
	f := func(start, limit int) {
		for y := start; y < limit; y++ {
			py := float64(y) + 0.5
			for _, d := range discs {
				dy := py - d.cy
				if dy*dy >= d.r*d.r {
					continue
				}
				half := math.Sqrt(d.r*d.r - dy*dy)
				x0 := max(0, int(math.Ceil(d.cx-half-0.5)))
				x1 := min(width, int(math.Ceil(d.cx+half-0.5)))
				if x1 > x0 {
					img.fill_span(y, x0, x1, d.colour)
				}
			}
		}
	}
	if err := parallel.Run_in_parallel_over_range(0, f, 0, height); err != nil {
		return nil, err
	}
	return img, nil
}
