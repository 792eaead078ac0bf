package calibration

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kovidgoyal/trivector/colorspace"
	"github.com/kovidgoyal/trivector/errs"
)

var _ = fmt.Print

// Measurement files have a header row followed by one row per reference
// colour, in red, green, blue, white order:
//
//	name,l,x,y
//	red,21.26,0.64,0.33
//	...
//
// The first column is a label and is ignored.

// LoadFile reads primaries from a .csv or .xlsx file.
func LoadFile(path string) (Primaries, error) {
	f, err := os.Open(path)
	if err != nil {
		return Primaries{}, errs.Wrapf(errs.WithCode(errs.CalibrationInput, err), "opening calibration file %s", path)
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(f)
	default:
		return LoadCSV(f)
	}
}

func LoadCSV(r io.Reader) (Primaries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return Primaries{}, errs.WithCode(errs.InputFormat, err)
	}
	return fromRows(rows)
}

// LoadXLSX reads the first sheet of a workbook laid out like the CSV form.
func LoadXLSX(r io.Reader) (Primaries, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Primaries{}, errs.WithCode(errs.InputFormat, err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Primaries{}, errs.New(errs.InputFormat, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Primaries{}, errs.WithCode(errs.InputFormat, err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) (Primaries, error) {
	var m []colorspace.Lxy
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		if len(row) < 4 {
			return Primaries{}, errs.Newf(errs.InputFormat, "row %d: expected label,l,x,y got %d fields", i+1, len(row))
		}
		var vals [3]float64
		for j := range 3 {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[j+1]), 64)
			if err != nil {
				return Primaries{}, errs.Wrapf(errs.WithCode(errs.InputFormat, err), "row %d column %d", i+1, j+2)
			}
			vals[j] = v
		}
		m = append(m, colorspace.Lxy{L: vals[0], X: vals[1], Y: vals[2]})
	}
	return PrimariesFromSlice(m)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
