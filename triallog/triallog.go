// Package triallog contains destinations for the trial log of a session:
// in-memory, CSV, an Excel workbook and an MQTT topic, plus a fan-out.
package triallog

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/kovidgoyal/trivector/staircase"
)

var _ = fmt.Print

type Trial = staircase.TrialRecord
type Final = staircase.FinalThreshold

// Memory keeps every record. Safe for concurrent use.
type Memory struct {
	mu        sync.Mutex
	trials    []Trial
	summaries [][]Final
}

func (m *Memory) RecordTrial(t Trial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trials = append(m.trials, t)
	return nil
}

func (m *Memory) RecordSummary(f []Final) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, slices.Clone(f))
	return nil
}

func (m *Memory) Trials() []Trial {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.trials)
}

// Summary returns the last summary recorded, if any.
func (m *Memory) Summary() ([]Final, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.summaries) == 0 {
		return nil, false
	}
	return slices.Clone(m.summaries[len(m.summaries)-1]), true
}

// CSV writes trials under staircase.TrialHeader as they arrive, flushing
// after each, and appends the summary as a second table after a blank line.
type CSV struct {
	w            *csv.Writer
	wrote_header bool
}

func NewCSV(w io.Writer) *CSV { return &CSV{w: csv.NewWriter(w)} }

func (c *CSV) flush() error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSV) RecordTrial(t Trial) error {
	if !c.wrote_header {
		if err := c.w.Write(staircase.TrialHeader); err != nil {
			return err
		}
		c.wrote_header = true
	}
	if err := c.w.Write(t.Columns()); err != nil {
		return err
	}
	return c.flush()
}

func (c *CSV) RecordSummary(finals []Final) error {
	rows := make([][]string, 0, len(finals)+2)
	if c.wrote_header {
		rows = append(rows, []string{})
	}
	rows = append(rows, staircase.SummaryHeader)
	for _, f := range finals {
		rows = append(rows, f.Columns())
	}
	if err := c.w.WriteAll(rows); err != nil {
		return err
	}
	return c.w.Error()
}

// Multi forwards every record to each sink in order, stopping at the first
// failure. A trial refused by one sink is expected to be recorded again once
// the failure is dealt with; sinks that already accepted it are skipped then,
// so every sink sees each trial and the summary exactly once.
type Multi struct {
	mu         sync.Mutex
	sinks      []staircase.Sink
	last       []trial_key
	summarised []bool
}

type trial_key struct {
	session     string
	axis, index int
	ok          bool
}

func key_of(t Trial) trial_key {
	return trial_key{session: t.SessionID, axis: t.Axis, index: t.TrialIndex, ok: true}
}

func NewMulti(sinks ...staircase.Sink) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		m.Add(s)
	}
	return m
}

func (m *Multi) Add(s staircase.Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, s)
	m.last = append(m.last, trial_key{})
	m.summarised = append(m.summarised, false)
}

func (m *Multi) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sinks)
}

func (m *Multi) RecordTrial(t Trial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := key_of(t)
	for i, s := range m.sinks {
		if m.last[i] == key {
			continue
		}
		if err := s.RecordTrial(t); err != nil {
			return err
		}
		m.last[i] = key
	}
	return nil
}

func (m *Multi) RecordSummary(f []Final) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sinks {
		if m.summarised[i] {
			continue
		}
		if err := s.RecordSummary(f); err != nil {
			return err
		}
		m.summarised[i] = true
	}
	return nil
}
