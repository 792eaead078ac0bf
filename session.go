package trivector

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/kovidgoyal/trivector/calibration"
	"github.com/kovidgoyal/trivector/colorspace"
	"github.com/kovidgoyal/trivector/confusion"
	"github.com/kovidgoyal/trivector/errs"
	"github.com/kovidgoyal/trivector/internal/logging"
	"github.com/kovidgoyal/trivector/layout"
	"github.com/kovidgoyal/trivector/staircase"
	"github.com/kovidgoyal/trivector/triallog"
)

var _ = fmt.Print

// StimulusSink shows a stimulus to the subject.
type StimulusSink interface {
	Present(staircase.Stimulus) error
}

// ResponseSource waits for the subject to answer the stimulus last
// presented.
type ResponseSource interface {
	Await(ctx context.Context, s staircase.Stimulus) (staircase.Direction, error)
}

type SessionConfig struct {
	// Axes is the number of confusion axes, 3 when zero.
	Axes int
	// Azimuths, in radians, override the default axis directions.
	Azimuths          []float64
	StartingThreshold float64
	StartingStep      int
	Seed              uint64
	Aggregate         staircase.Aggregator
	Layouts           *layout.Table
}

type Option func(*Session)

// WithSink adds a destination for the trial log. Sinks receive records in
// the order they were added.
func WithSink(sink staircase.Sink) Option {
	return func(s *Session) { s.sinks.Add(sink) }
}

func WithLogger(l *logging.Logger) Option { return func(s *Session) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

func WithSessionID(id string) Option { return func(s *Session) { s.ID = id } }

// Session runs one trivector test: calibration, then trials until every axis
// has terminated. A Session is not safe for concurrent use, except for
// Calibrate which may be called from any goroutine.
type Session struct {
	ID string

	cfg         SessionConfig
	rng         *rand.Rand
	model       *confusion.Model
	calibrator  calibration.Calibrator
	sinks       *triallog.Multi
	log         *logging.Logger
	now         func() time.Time
	engine      *staircase.Engine
	current     staircase.Stimulus
	outstanding bool
}

func NewSession(cfg SessionConfig, opts ...Option) (*Session, error) {
	if cfg.Axes == 0 {
		cfg.Axes = len(confusion.Canonical)
	}
	s := &Session{cfg: cfg, sinks: triallog.NewMulti(), rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)), log: logging.Default, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	var err error
	if s.model, err = confusion.NewModel(cfg.Axes, cfg.Azimuths, s.rng); err != nil {
		return nil, err
	}
	return s, nil
}

// Calibrate solves p and installs the result for subsequent stimuli. On
// failure the previous calibration, if any, stays in place.
func (s *Session) Calibrate(p calibration.Primaries) error {
	t, err := s.calibrator.Calibrate(p)
	if err != nil {
		s.log.Error("session %s: calibration failed: %s", s.ID, err)
		return err
	}
	s.log.Info("session %s: calibrated display, max luminance %g", s.ID, t.MaxLuminance)
	s.log.Debug("session %s: transform\n%s", s.ID, t)
	return nil
}

func (s *Session) Transform() (colorspace.Transform, bool) { return s.calibrator.Current() }

func (s *Session) Model() *confusion.Model { return s.model }

// Engine is nil until Start.
func (s *Session) Engine() *staircase.Engine { return s.engine }

// Start creates the staircases and returns the first stimulus. The session
// must have been calibrated.
func (s *Session) Start() (staircase.Stimulus, error) {
	if s.engine != nil {
		return staircase.Stimulus{}, errs.Newf(errs.ConfigInvalid, "session %s already started", s.ID)
	}
	var sink staircase.Sink
	if s.sinks.Len() > 0 {
		sink = s.sinks
	}
	e, err := staircase.New(s.model, &s.calibrator, s.rng, sink, staircase.Config{
		StartingThreshold: s.cfg.StartingThreshold,
		StartingStep:      s.cfg.StartingStep,
		Aggregate:         s.cfg.Aggregate,
		Layouts:           s.cfg.Layouts,
		SessionID:         s.ID,
		Now:               s.now,
	})
	if err != nil {
		return staircase.Stimulus{}, err
	}
	s.engine = e
	s.current, s.outstanding = e.NextStimulus()
	s.log.Info("session %s: started with %d axes", s.ID, e.Len())
	return s.current, nil
}

// Current is the stimulus awaiting an answer, if any.
func (s *Session) Current() (staircase.Stimulus, bool) { return s.current, s.outstanding }

// Respond answers the outstanding stimulus. When the answer is rejected the
// same stimulus stays outstanding and is returned with the error.
func (s *Session) Respond(response staircase.Direction) (next staircase.Stimulus, more bool, err error) {
	if !s.outstanding {
		return staircase.Stimulus{}, false, errs.Newf(errs.InvalidResponse, "session %s has no stimulus awaiting an answer", s.ID)
	}
	prev := s.current
	next, more, err = s.engine.HandleResponse(response, prev.Direction, prev.Axis)
	if err != nil {
		if errs.Is(err, errs.InvalidResponse) || !s.engine.AllDone() {
			return prev, true, err
		}
		// the summary could not be recorded, the trials are complete
		s.outstanding = false
		return staircase.Stimulus{}, false, err
	}
	if st := s.engine.State(prev.Axis); st.Done {
		s.log.Info("session %s: axis %d terminated at threshold %.5f after %d trials", s.ID, prev.Axis, st.Threshold, st.TrialIndex)
	}
	s.current, s.outstanding = next, more
	if !more {
		s.log_finals()
	}
	return next, more, nil
}

func (s *Session) log_finals() {
	finals, err := s.engine.FinalThresholds()
	if err != nil {
		s.log.Error("session %s: %s", s.ID, err)
		return
	}
	for _, f := range finals {
		suffix := ""
		if f.Fallback {
			suffix = " (no reversals, last threshold)"
		}
		s.log.Info("session %s: %s axis (%.2f rad) final threshold %.5f%s", s.ID, f.Name, f.Azimuth, f.Value, suffix)
	}
}

// Finals returns the final thresholds once the session has finished.
func (s *Session) Finals() ([]staircase.FinalThreshold, error) {
	if s.engine == nil {
		return nil, errs.Newf(errs.InvalidResponse, "session %s not started", s.ID)
	}
	return s.engine.FinalThresholds()
}

// Run presents stimuli and collects answers until every axis has terminated
// or ctx is done. Rejected answers are logged and awaited again without
// presenting anew. Run starts the session if Start has not been called.
func (s *Session) Run(ctx context.Context, sink StimulusSink, src ResponseSource) ([]staircase.FinalThreshold, error) {
	stim, ok := s.Current()
	if s.engine == nil {
		var err error
		if stim, err = s.Start(); err != nil {
			return nil, err
		}
		ok = s.outstanding
	}
	for ok {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := sink.Present(stim); err != nil {
			return nil, errs.Wrapf(err, "presenting trial on axis %d", stim.Axis)
		}
		for {
			answer, err := src.Await(ctx, stim)
			if err != nil {
				return nil, err
			}
			next, more, err := s.Respond(answer)
			if errs.Is(err, errs.InvalidResponse) {
				s.log.Warn("session %s: %s, awaiting another answer", s.ID, err)
				if cerr := ctx.Err(); cerr != nil {
					return nil, cerr
				}
				continue
			}
			if err != nil {
				return nil, err
			}
			stim, ok = next, more
			break
		}
	}
	return s.Finals()
}
