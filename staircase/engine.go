package staircase

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/kovidgoyal/trivector/colorspace"
	"github.com/kovidgoyal/trivector/confusion"
	"github.com/kovidgoyal/trivector/errs"
	"github.com/kovidgoyal/trivector/layout"
)

var _ = fmt.Print

// Rand is the randomness used to choose stimuli. *math/rand/v2.Rand
// satisfies it.
type Rand interface {
	IntN(n int) int
}

// TransformSource supplies the current calibration. *calibration.Calibrator
// satisfies it, so a recalibration during a session takes effect on the next
// stimulus.
type TransformSource interface {
	Current() (colorspace.Transform, bool)
}

// FixedTransform is a TransformSource that never changes.
type FixedTransform colorspace.Transform

func (f FixedTransform) Current() (colorspace.Transform, bool) {
	t := colorspace.Transform(f)
	return t, !t.IsZero()
}

// Aggregator turns the banked reversal thresholds of an axis into its final
// threshold. It is never called with an empty slice.
type Aggregator func(reversals []float64) (float64, error)

func Mean(reversals []float64) (float64, error) { return stats.Mean(reversals) }

func Median(reversals []float64) (float64, error) { return stats.Median(reversals) }

type Config struct {
	StartingThreshold float64
	StartingStep      int
	Aggregate         Aggregator
	Layouts           *layout.Table
	SessionID         string
	Now               func() time.Time
}

func (c Config) with_defaults() Config {
	if c.StartingThreshold == 0 {
		c.StartingThreshold = StartingThreshold
	}
	if c.StartingStep == 0 {
		c.StartingStep = StartingStep
	}
	if c.Aggregate == nil {
		c.Aggregate = Mean
	}
	if c.Layouts == nil {
		c.Layouts = layout.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

func (c Config) validate() error {
	if math.IsNaN(c.StartingThreshold) || c.StartingThreshold < Floor || c.StartingThreshold > Ceiling {
		return errs.Newf(errs.ConfigInvalid, "starting threshold %v outside [%v, %v]", c.StartingThreshold, Floor, Ceiling)
	}
	if c.StartingStep <= 0 || c.StartingStep >= 100 {
		return errs.Newf(errs.ConfigInvalid, "starting step %d%% outside (0, 100)", c.StartingStep)
	}
	return nil
}

type Engine struct {
	cfg        Config
	model      *confusion.Model
	transforms TransformSource
	rng        Rand
	sink       Sink
	states     []State
	finals     []FinalThreshold
}

// New creates an engine with every axis of model active at the starting
// threshold. A nil sink discards records.
func New(model *confusion.Model, transforms TransformSource, rng Rand, sink Sink, cfg Config) (*Engine, error) {
	cfg = cfg.with_defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if model == nil || rng == nil || transforms == nil {
		return nil, errs.New(errs.ConfigInvalid, "staircase engine needs a confusion model, a calibration and a random source")
	}
	if _, ok := transforms.Current(); !ok {
		return nil, errs.New(errs.CalibrationInput, "no calibration transform installed")
	}
	if sink == nil {
		sink = discard{}
	}
	e := &Engine{cfg: cfg, model: model, transforms: transforms, rng: rng, sink: sink, states: make([]State, model.Len())}
	for i := range e.states {
		e.states[i] = State{Threshold: cfg.StartingThreshold, StepPercent: cfg.StartingStep}
	}
	return e, nil
}

func (e *Engine) Len() int { return len(e.states) }

// State returns a copy of the staircase of axis.
func (e *Engine) State(axis int) State { return e.states[axis].clone() }

func (e *Engine) States() []State {
	ans := make([]State, len(e.states))
	for i, s := range e.states {
		ans[i] = s.clone()
	}
	return ans
}

// AllDone is true once every axis has terminated.
func (e *Engine) AllDone() bool {
	for _, s := range e.states {
		if !s.Done {
			return false
		}
	}
	return true
}

func (e *Engine) transform() colorspace.Transform {
	t, _ := e.transforms.Current()
	return t
}

// NextStimulus picks a random axis, falling back to the first active axis
// when the pick has terminated, and a random direction. It returns false
// once all axes are done.
func (e *Engine) NextStimulus() (Stimulus, bool) {
	if e.AllDone() {
		return Stimulus{}, false
	}
	axis := e.rng.IntN(len(e.states))
	if e.states[axis].Done {
		for i, s := range e.states {
			if !s.Done {
				axis = i
				break
			}
		}
	}
	dir := Direction(e.rng.IntN(layout.NumDirections))
	t := e.transform()
	s := Stimulus{
		Axis:       axis,
		Azimuth:    e.model.Axis(axis).Azimuth,
		Direction:  dir,
		Layout:     e.cfg.Layouts.Choose(dir, e.rng),
		Magnitude:  e.states[axis].Threshold,
		Target:     e.model.Target(axis, e.states[axis].Threshold),
		Background: e.model.Background(),
	}
	s.TargetRGB = colorspace.LuvToRGB(s.Target, t)
	s.BackgroundRGB = colorspace.LuvToRGB(s.Background, t)
	return s, true
}

// Shade draws a fresh colour for one plate of s, with its own luminance
// jitter.
func (e *Engine) Shade(s Stimulus, target bool) colorspace.RGB {
	var c colorspace.Luv
	if target {
		c = e.model.Target(s.Axis, s.Magnitude)
	} else {
		c = e.model.Background()
	}
	return colorspace.LuvToRGB(c, e.transform())
}

// step applies one response to s. The axis terminates on its fifth miss at
// or above the starting threshold, on its fourth reversal or at the floor.
func (e *Engine) step(s *State, correct bool) {
	if s.DirectionFlag != correct {
		s.Reversals = append(s.Reversals, s.Threshold)
	}
	var next float64
	switch {
	case !correct && s.Threshold >= e.cfg.StartingThreshold:
		s.CeilingTrack++
		next = Ceiling
		if s.CeilingTrack >= CeilingTrackLimit {
			s.Done = true
		}
	case correct:
		s.DirectionFlag = true
		next = s.Threshold * (1 - float64(s.StepPercent)/100)
	default:
		reversal := s.DirectionFlag
		s.DirectionFlag = false
		s.StepPercent = UpStep
		next = s.Threshold * (1 + float64(s.StepPercent)/100)
		s.StepPercent = StartingStep
		if reversal {
			s.ReversalCount++
		}
	}
	next = min(next, Ceiling)
	if next >= Floor {
		if s.ReversalCount >= ReversalLimit {
			s.Done = true
		}
	} else {
		next = Floor
		s.Done = true
	}
	s.Threshold = next
}

func (e *Engine) validate(response, presented Direction, axis int) error {
	switch {
	case !response.Valid():
		return errs.Newf(errs.InvalidResponse, "response %d is not a direction", int(response))
	case !presented.Valid():
		return errs.Newf(errs.InvalidResponse, "presented direction %d is not a direction", int(presented))
	case axis < 0 || axis >= len(e.states):
		return errs.Newf(errs.InvalidResponse, "axis %d out of range [0, %d)", axis, len(e.states))
	case e.states[axis].Done:
		return errs.Newf(errs.InvalidResponse, "axis %d has already terminated", axis)
	}
	return nil
}

// HandleResponse applies the subject's answer to the stimulus shown on axis
// in direction presented, logs the trial and returns the next stimulus. more
// is false once the session has finished, at which point final thresholds
// have been computed and sent to the sink. Once finished further calls do
// nothing.
//
// Invalid input is rejected with errs.InvalidResponse and a sink that refuses
// the trial record fails the call with errs.LogSink; in both cases the state
// is left untouched.
func (e *Engine) HandleResponse(response, presented Direction, axis int) (next Stimulus, more bool, err error) {
	if e.AllDone() {
		return Stimulus{}, false, nil
	}
	if err = e.validate(response, presented, axis); err != nil {
		return
	}
	prev := e.states[axis]
	s := prev.clone()
	correct := response == presented
	e.step(&s, correct)
	neutral := e.model.Neutral()
	rec := TrialRecord{
		SessionID:     e.cfg.SessionID,
		Time:          e.cfg.Now(),
		Axis:          axis,
		Azimuth:       e.model.Axis(axis).Azimuth,
		Response:      response,
		Presented:     presented,
		Correct:       correct,
		NeutralU:      neutral.U,
		NeutralV:      neutral.V,
		Threshold:     prev.Threshold,
		NewThreshold:  s.Threshold,
		ReversalCount: s.ReversalCount,
		StepPercent:   s.StepPercent,
		TrialIndex:    prev.TrialIndex,
		Done:          s.Done,
	}
	if err = e.sink.RecordTrial(rec); err != nil {
		return Stimulus{}, false, errs.Wrapf(errs.WithCode(errs.LogSink, err), "recording trial %d of axis %d", prev.TrialIndex, axis)
	}
	s.TrialIndex++
	e.states[axis] = s
	if !e.AllDone() {
		next, more = e.NextStimulus()
		return next, more, nil
	}
	finals, err := e.FinalThresholds()
	if err != nil {
		return Stimulus{}, false, err
	}
	if err = e.sink.RecordSummary(finals); err != nil {
		return Stimulus{}, false, errs.Wrap(errs.WithCode(errs.LogSink, err), "recording final thresholds")
	}
	return Stimulus{}, false, nil
}

// FinalThresholds aggregates the banked reversal thresholds of every axis.
// It is only available once all axes are done and is computed once. An axis
// that never banked a reversal threshold reports its last threshold with
// Fallback set.
func (e *Engine) FinalThresholds() ([]FinalThreshold, error) {
	if !e.AllDone() {
		return nil, errs.New(errs.InvalidResponse, "final thresholds requested before every axis terminated")
	}
	if e.finals != nil {
		return append([]FinalThreshold(nil), e.finals...), nil
	}
	finals := make([]FinalThreshold, len(e.states))
	for i, s := range e.states {
		ax := e.model.Axis(i)
		f := FinalThreshold{Axis: i, Name: ax.Name, Azimuth: ax.Azimuth, Reversals: len(s.Reversals)}
		if len(s.Reversals) == 0 {
			f.Value, f.Fallback = s.Threshold, true
		} else {
			v, err := e.cfg.Aggregate(s.Reversals)
			if err != nil {
				return nil, errs.Wrapf(err, "aggregating final threshold of axis %d", i)
			}
			f.Value = v
			if sd, err := stats.StandardDeviation(s.Reversals); err == nil {
				f.Spread = sd
			}
		}
		finals[i] = f
	}
	e.finals = finals
	return append([]FinalThreshold(nil), finals...), nil
}
