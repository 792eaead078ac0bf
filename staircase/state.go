// Package staircase is the adaptive trial state machine of the trivector
// test: one independent up/down staircase per confusion axis, run until every
// axis has converged, bottomed out or been pinned at the ceiling.
package staircase

import (
	"fmt"
	"slices"
	"time"

	"github.com/kovidgoyal/trivector/colorspace"
	"github.com/kovidgoyal/trivector/layout"
)

var _ = fmt.Print

type Direction = layout.Direction

const (
	StartingThreshold = 0.064
	StartingStep      = 8
	// UpStep is the percentage applied on every increase, whatever the
	// current step.
	UpStep            = 24
	Ceiling           = 0.110
	Floor             = 0.002
	CeilingTrackLimit = 5
	ReversalLimit     = 4
)

// State is the staircase of one axis.
type State struct {
	Threshold   float64
	StepPercent int
	// DirectionFlag is true while the axis is on a run of correct answers.
	DirectionFlag bool
	ReversalCount int
	// CeilingTrack counts misses at or above the starting threshold.
	CeilingTrack int
	TrialIndex   int
	Done         bool
	Reversals    []float64
}

func (s State) clone() State {
	s.Reversals = slices.Clone(s.Reversals)
	return s
}

func (s State) String() string {
	return fmt.Sprintf("State{threshold: %.5f step: %d%% flag: %v reversals: %d ceiling: %d trial: %d done: %v}",
		s.Threshold, s.StepPercent, s.DirectionFlag, s.ReversalCount, s.CeilingTrack, s.TrialIndex, s.Done)
}

// Stimulus is one presentation. Target plates are those of Layout, every
// other plate shows the background.
type Stimulus struct {
	Axis      int
	Azimuth   float64
	Direction Direction
	Layout    layout.Layout
	// Magnitude is the threshold of the axis when the stimulus was chosen.
	Magnitude     float64
	Target        colorspace.Luv
	Background    colorspace.Luv
	TargetRGB     colorspace.RGB
	BackgroundRGB colorspace.RGB
}

func (s Stimulus) IsZero() bool { return s.Layout.Plates == nil && s.Magnitude == 0 }

// TrialRecord is what is logged for every handled response.
type TrialRecord struct {
	SessionID string    `json:"session_id"`
	Time      time.Time `json:"time"`
	Axis      int       `json:"axis"`
	Azimuth   float64   `json:"azimuth"`
	Response  Direction `json:"response"`
	Presented Direction `json:"presented"`
	Correct   bool      `json:"correct"`
	NeutralU  float64   `json:"neutral_u"`
	NeutralV  float64   `json:"neutral_v"`
	// Threshold is the value presented, before the update.
	Threshold    float64 `json:"threshold"`
	NewThreshold float64 `json:"new_threshold"`
	// ReversalCount and StepPercent are after the update.
	ReversalCount int  `json:"reversal_count"`
	StepPercent   int  `json:"step_percent"`
	TrialIndex    int  `json:"trial_index"`
	Done          bool `json:"done"`
}

// TrialHeader names the columns returned by TrialRecord.Columns.
var TrialHeader = []string{
	"Patient Input", "Patient Response", "v_prime_w", "orientation", "u_prime_w", "saturation",
	"Number of Reversals", "Index Trial", "Threshold", "Decreasing Parameter Rate", "ConditionName", "az",
	"Session", "Axis", "New Threshold", "Done", "Time",
}

const ConditionName = "azimuth"

func (r TrialRecord) Outcome() string {
	if r.Correct {
		return "Hit"
	}
	return "Miss"
}

func fmt_float(x float64) string { return fmt.Sprintf("%g", x) }

// Columns renders r in TrialHeader order.
func (r TrialRecord) Columns() []string {
	return []string{
		r.Response.Button(), r.Outcome(), fmt_float(r.NeutralV), fmt.Sprint(r.Presented.Degrees()), fmt_float(r.NeutralU),
		fmt_float(r.Threshold), fmt.Sprint(r.ReversalCount), fmt.Sprint(r.TrialIndex), fmt_float(r.Threshold),
		fmt.Sprint(r.StepPercent), ConditionName, fmt_float(r.Azimuth),
		r.SessionID, fmt.Sprint(r.Axis), fmt_float(r.NewThreshold), fmt.Sprint(r.Done), r.Time.UTC().Format(time.RFC3339Nano),
	}
}

// FinalThreshold is the result for one axis.
type FinalThreshold struct {
	Axis      int     `json:"axis"`
	Name      string  `json:"name"`
	Azimuth   float64 `json:"azimuth"`
	Value     float64 `json:"final"`
	Reversals int     `json:"reversals"`
	// Spread is the standard deviation of the banked reversal thresholds.
	Spread float64 `json:"spread"`
	// Fallback is set when no reversal threshold was banked and Value is the
	// last threshold of the axis instead of an aggregate.
	Fallback bool `json:"fallback"`
}

var SummaryHeader = []string{ConditionName, "final", "reversals", "spread", "fallback", "axis", "name"}

func (f FinalThreshold) Columns() []string {
	return []string{
		fmt_float(f.Azimuth), fmt_float(f.Value), fmt.Sprint(f.Reversals), fmt_float(f.Spread), fmt.Sprint(f.Fallback),
		fmt.Sprint(f.Axis), f.Name,
	}
}

// Sink receives the log of a session, one record at a time. A session never
// reads its log back.
type Sink interface {
	RecordTrial(TrialRecord) error
	RecordSummary([]FinalThreshold) error
}

type discard struct{}

func (discard) RecordTrial(TrialRecord) error        { return nil }
func (discard) RecordSummary([]FinalThreshold) error { return nil }
