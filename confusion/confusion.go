// Package confusion describes the colour confusion axes of the trivector
// test: directions in u'v' chromaticity radiating from a neutral point, along
// which a colour vision deficiency reduces discrimination.
package confusion

import (
	"fmt"
	"math"

	"github.com/kovidgoyal/trivector/colorspace"
	"github.com/kovidgoyal/trivector/errs"
)

var _ = fmt.Print

// Radii of the two ends of every axis, measured from the neutral point in
// u'v' units.
const (
	NearRadius = 0.002
	FarRadius  = 1.002
)

// Luminance of every interpolated colour is drawn uniformly from
// [MinLuminance, MinLuminance+LuminanceSpan) so brightness cannot be used as
// a cue.
const (
	MinLuminance  = 6.0
	LuminanceSpan = 16.0
)

// Neutral is the achromatic background chromaticity.
var Neutral = colorspace.Luv{L: 1, U: 0.1977, V: 0.4689}

// Canonical azimuths, in radians, used when three axes are requested
// without explicit angles.
var Canonical = [3]Axis{
	{Name: "protan", Azimuth: 0.07},
	{Name: "deutan", Azimuth: 5.98},
	{Name: "tritan", Azimuth: 4.83},
}

type Axis struct {
	Name    string
	Azimuth float64
}

// Rand is the randomness the model needs. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
}

type Model struct {
	axes    []Axis
	neutral colorspace.Luv
	rng     Rand
}

// NewModel builds n axes. With no azimuths, n == 3 gives the canonical
// protan/deutan/tritan set and any other n gives angles evenly spaced over
// [0, 2pi). Explicit azimuths must number n.
func NewModel(n int, azimuths []float64, rng Rand) (*Model, error) {
	if n < 1 {
		return nil, errs.Newf(errs.ConfigInvalid, "need at least one confusion axis, got %d", n)
	}
	if rng == nil {
		return nil, errs.New(errs.ConfigInvalid, "confusion model needs a random source")
	}
	m := &Model{axes: make([]Axis, n), neutral: Neutral, rng: rng}
	switch {
	case len(azimuths) > 0:
		if len(azimuths) != n {
			return nil, errs.Newf(errs.ConfigInvalid, "%d azimuths given for %d axes", len(azimuths), n)
		}
		for i, a := range azimuths {
			if math.IsNaN(a) || math.IsInf(a, 0) {
				return nil, errs.Newf(errs.ConfigInvalid, "azimuth %d is not finite", i)
			}
			m.axes[i] = Axis{Name: fmt.Sprintf("axis-%d", i), Azimuth: a}
		}
	case n == len(Canonical):
		copy(m.axes, Canonical[:])
	default:
		for i := range n {
			m.axes[i] = Axis{Name: fmt.Sprintf("axis-%d", i), Azimuth: float64(i) * 2 * math.Pi / float64(n)}
		}
	}
	return m, nil
}

func (m *Model) Len() int                    { return len(m.axes) }
func (m *Model) Axis(i int) Axis             { return m.axes[i] }
func (m *Model) Neutral() colorspace.Luv     { return m.neutral }
func (m *Model) Axes() []Axis                { return append([]Axis(nil), m.axes...) }
func (m *Model) Valid(axis int) bool         { return axis >= 0 && axis < len(m.axes) }
func (m *Model) SetNeutral(n colorspace.Luv) { m.neutral = n }

// StimulusPoint returns the achromatic (near) and maximally saturated (far)
// ends of axis.
func (m *Model) StimulusPoint(axis int) (start, end colorspace.Luv) {
	az := m.axes[axis].Azimuth
	cu, sv := math.Cos(az), math.Sin(az)
	start = colorspace.Luv{L: 1, U: m.neutral.U + NearRadius*cu, V: m.neutral.V + NearRadius*sv}
	end = colorspace.Luv{L: 1, U: m.neutral.U + FarRadius*cu, V: m.neutral.V + FarRadius*sv}
	return
}

// Interpolate moves magnitude/steps of the way from start to end in u'v' and
// draws a fresh luminance.
func (m *Model) Interpolate(start, end colorspace.Luv, magnitude float64, steps int) colorspace.Luv {
	f := magnitude / float64(steps)
	return colorspace.Luv{
		L: m.rng.Float64()*LuminanceSpan + MinLuminance,
		U: start.U + f*(end.U-start.U),
		V: start.V + f*(end.V-start.V),
	}
}

// Target is the colour shown on target plates of axis at magnitude.
func (m *Model) Target(axis int, magnitude float64) colorspace.Luv {
	start, end := m.StimulusPoint(axis)
	return m.Interpolate(start, end, magnitude, 1)
}

// Background is the neutral colour with its own luminance draw.
func (m *Model) Background() colorspace.Luv {
	return m.Interpolate(m.neutral, m.neutral, 1, 1)
}
