package render

import (
	"image"
	"image/png"
	"io"
	"math"
	"time"

	"github.com/kettek/apng"
)

type Frame struct {
	Image image.Image
	Delay time.Duration
}

// Animation accumulates one frame per presentation for a replay of the
// session. All frames must have the same bounds.
type Animation struct {
	Frames    []Frame
	LoopCount uint // 0 means loop forever, 1 means play once, ...
}

func (a *Animation) Add(img image.Image, delay time.Duration) {
	a.Frames = append(a.Frames, Frame{Image: img, Delay: delay})
}

// delay_fraction expresses d as a frame delay in seconds. Stimulus delays
// are whole milliseconds, so the fraction is ms/1000 in lowest terms; delays
// too long for that are rounded to whole seconds.
func delay_fraction(d time.Duration) (num, den uint16) {
	ms := d.Round(time.Millisecond).Milliseconds()
	switch {
	case ms <= 0:
		return 0, 1
	case ms > math.MaxUint16:
		return uint16(min(math.Round(d.Seconds()), math.MaxUint16)), 1
	}
	g := gcd(ms, 1000)
	return uint16(ms / g), uint16(1000 / g)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func (a *Animation) as_apng() (ans apng.APNG) {
	ans.LoopCount = a.LoopCount
	for _, f := range a.Frames {
		d := apng.Frame{Image: f.Image, DisposeOp: apng.DISPOSE_OP_NONE, BlendOp: apng.BLEND_OP_SOURCE}
		d.DelayNumerator, d.DelayDenominator = delay_fraction(f.Delay)
		ans.Frames = append(ans.Frames, d)
	}
	return
}

// Encode writes the animation as an animated PNG. A single frame is written
// as a plain PNG.
func (a *Animation) Encode(w io.Writer) error {
	switch len(a.Frames) {
	case 0:
		return ErrEmptyAnimation
	case 1:
		return png.Encode(w, a.Frames[0].Image)
	}
	return apng.Encode(w, a.as_apng())
}
