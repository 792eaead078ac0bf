// Package observer provides a simulated subject for running sessions without
// a person at the controls.
package observer

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kovidgoyal/trivector/errs"
	"github.com/kovidgoyal/trivector/layout"
	"github.com/kovidgoyal/trivector/staircase"
)

var _ = fmt.Print

// Guess is the chance of a correct answer when the figure is invisible.
const Guess = 1.0 / layout.NumDirections

// Rand is the randomness the simulated subject needs. *math/rand/v2.Rand
// satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Simulated answers with a cumulative normal psychometric function per axis:
// P(correct) = Guess + (1-Guess) * Phi((magnitude - threshold) / sigma).
// Wrong answers are one of the other three directions, chosen uniformly.
type Simulated struct {
	curves []distuv.Normal
	rng    Rand
}

// NewSimulated builds a subject with the given true threshold per axis and a
// common slope parameter sigma.
func NewSimulated(thresholds []float64, sigma float64, rng Rand) (*Simulated, error) {
	if len(thresholds) == 0 {
		return nil, errs.New(errs.ConfigInvalid, "simulated observer needs at least one threshold")
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, errs.Newf(errs.ConfigInvalid, "simulated observer sigma must be positive, got %v", sigma)
	}
	if rng == nil {
		return nil, errs.New(errs.ConfigInvalid, "simulated observer needs a random source")
	}
	s := &Simulated{curves: make([]distuv.Normal, len(thresholds)), rng: rng}
	for i, t := range thresholds {
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return nil, errs.Newf(errs.ConfigInvalid, "simulated threshold %d is %v", i, t)
		}
		s.curves[i] = distuv.Normal{Mu: t, Sigma: sigma}
	}
	return s, nil
}

// PCorrect is the probability of a correct answer on axis at magnitude.
// Axes beyond the configured thresholds reuse the last one.
func (s *Simulated) PCorrect(axis int, magnitude float64) float64 {
	c := s.curves[min(max(axis, 0), len(s.curves)-1)]
	return Guess + (1-Guess)*c.CDF(magnitude)
}

// Answer draws a response to st.
func (s *Simulated) Answer(st staircase.Stimulus) staircase.Direction {
	if s.rng.Float64() < s.PCorrect(st.Axis, st.Magnitude) {
		return st.Direction
	}
	return staircase.Direction((int(st.Direction) + 1 + s.rng.IntN(layout.NumDirections-1)) % layout.NumDirections)
}

// Await answers immediately unless ctx is already done.
func (s *Simulated) Await(ctx context.Context, st staircase.Stimulus) (staircase.Direction, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.Answer(st), nil
}
