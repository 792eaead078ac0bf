package calibration

import (
	"sync/atomic"

	"github.com/kovidgoyal/trivector/colorspace"
)

// Calibrator owns the installed transform. Recalibration replaces the whole
// value at once, so readers see either the old transform or the new one.
type Calibrator struct {
	current atomic.Pointer[colorspace.Transform]
}

// Current returns the installed transform and whether one is installed.
func (c *Calibrator) Current() (colorspace.Transform, bool) {
	if t := c.current.Load(); t != nil {
		return *t, true
	}
	return colorspace.Transform{}, false
}

// Install replaces the transform and returns the previous one.
func (c *Calibrator) Install(t colorspace.Transform) (prev colorspace.Transform, had_prev bool) {
	if old := c.current.Swap(&t); old != nil {
		return *old, true
	}
	return
}

// Calibrate solves for p and installs the result. On failure the previously
// installed transform stays in place.
func (c *Calibrator) Calibrate(p Primaries) (colorspace.Transform, error) {
	t, err := Solve(p)
	if err != nil {
		return t, err
	}
	c.Install(t)
	return t, nil
}
