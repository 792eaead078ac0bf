package triallog

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kovidgoyal/trivector/staircase"
)

const (
	TrialsSheet  = "Trials"
	SummarySheet = "Summary"
)

// Workbook collects the log into an xlsx file with one sheet for trials and
// one for the final thresholds. Nothing is written out until Save or
// WriteTo.
type Workbook struct {
	f         *excelize.File
	trial_row int
}

func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), TrialsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, err
	}
	w := &Workbook{f: f, trial_row: 2}
	if err := w.set_row(TrialsSheet, 1, strings_to_row(staircase.TrialHeader)); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func strings_to_row(s []string) []any {
	ans := make([]any, len(s))
	for i, x := range s {
		ans[i] = x
	}
	return ans
}

func (w *Workbook) set_row(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(sheet, cell, &values)
}

func (w *Workbook) RecordTrial(t Trial) error {
	values := []any{
		t.Response.Button(), t.Outcome(), t.NeutralV, t.Presented.Degrees(), t.NeutralU, t.Threshold,
		t.ReversalCount, t.TrialIndex, t.Threshold, t.StepPercent, staircase.ConditionName, t.Azimuth,
		t.SessionID, t.Axis, t.NewThreshold, t.Done, t.Time,
	}
	if err := w.set_row(TrialsSheet, w.trial_row, values); err != nil {
		return fmt.Errorf("writing trial %d to workbook: %w", t.TrialIndex, err)
	}
	w.trial_row++
	return nil
}

func (w *Workbook) RecordSummary(finals []Final) error {
	if err := w.set_row(SummarySheet, 1, strings_to_row(staircase.SummaryHeader)); err != nil {
		return err
	}
	for i, f := range finals {
		values := []any{f.Azimuth, f.Value, f.Reversals, f.Spread, f.Fallback, f.Axis, f.Name}
		if err := w.set_row(SummarySheet, i+2, values); err != nil {
			return fmt.Errorf("writing final threshold of axis %d to workbook: %w", f.Axis, err)
		}
	}
	return nil
}

func (w *Workbook) WriteTo(out io.Writer) (int64, error) { return w.f.WriteTo(out) }

func (w *Workbook) Save(path string) error { return w.f.SaveAs(path) }

func (w *Workbook) Close() error { return w.f.Close() }
