// Package layout holds the static presentation tables of the test: which
// plates form the target figure for each response direction, and where the
// plates sit.
package layout

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kovidgoyal/trivector/errs"
)

var _ = fmt.Print

// Direction is where the target figure points. The subject answers with one
// of the same four values.
type Direction int

const (
	Up Direction = iota
	Left
	Down
	Right
)

const NumDirections = 4

func (d Direction) Valid() bool { return d >= Up && d <= Right }

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Left:
		return "left"
	case Down:
		return "down"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Degrees is the orientation of the figure, counter-clockwise from the
// positive x axis.
func (d Direction) Degrees() int {
	switch d {
	case Up:
		return 90
	case Left:
		return 180
	case Down:
		return 270
	}
	return 0
}

// Button is the label of the response control for d.
func (d Direction) Button() string {
	switch d {
	case Up:
		return "Top Button"
	case Left:
		return "Left Button"
	case Down:
		return "Bottom Button"
	case Right:
		return "Right Button"
	}
	return ""
}

type Layout struct {
	Name   string `yaml:"name"`
	Plates []int  `yaml:"plates"`
}

type Table struct {
	layouts [NumDirections][2]Layout
}

type table_file struct {
	Directions []struct {
		Name    string   `yaml:"name"`
		Degrees int      `yaml:"degrees"`
		Layouts []Layout `yaml:"layouts"`
	} `yaml:"directions"`
}

//go:embed layouts.yaml
var default_layouts []byte

// Default returns the built-in table.
var Default = sync.OnceValue(func() *Table {
	t, err := Parse(default_layouts)
	if err != nil {
		panic(fmt.Sprintf("built-in layout table is invalid: %s", err))
	}
	return t
})

// Parse reads a table. Directions must appear in Up, Left, Down, Right
// order, each with exactly two non-empty layouts. Duplicate plate indices
// within a layout are dropped.
func Parse(data []byte) (*Table, error) {
	var f table_file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errs.WithCode(errs.InputFormat, err)
	}
	if len(f.Directions) != NumDirections {
		return nil, errs.Newf(errs.InputFormat, "layout table needs %d directions, got %d", NumDirections, len(f.Directions))
	}
	t := &Table{}
	for i, d := range f.Directions {
		dir := Direction(i)
		if d.Name != dir.String() || d.Degrees != dir.Degrees() {
			return nil, errs.Newf(errs.InputFormat, "direction %d must be %s (%d degrees), got %s (%d)", i, dir, dir.Degrees(), d.Name, d.Degrees)
		}
		if len(d.Layouts) != 2 {
			return nil, errs.Newf(errs.InputFormat, "direction %s needs 2 layouts, got %d", dir, len(d.Layouts))
		}
		for j, l := range d.Layouts {
			if len(l.Plates) == 0 {
				return nil, errs.Newf(errs.InputFormat, "layout %s of direction %s is empty", l.Name, dir)
			}
			seen := make(map[int]bool, len(l.Plates))
			plates := make([]int, 0, len(l.Plates))
			for _, p := range l.Plates {
				if p < 0 {
					return nil, errs.Newf(errs.InputFormat, "layout %s has negative plate index %d", l.Name, p)
				}
				if !seen[p] {
					seen[p] = true
					plates = append(plates, p)
				}
			}
			t.layouts[i][j] = Layout{Name: l.Name, Plates: plates}
		}
	}
	return t, nil
}

// IntN is the randomness Choose needs. *math/rand/v2.Rand satisfies it.
type IntN interface {
	IntN(n int) int
}

func (t *Table) Layouts(d Direction) [2]Layout { return t.layouts[d] }

// Choose picks one of the two layouts for d uniformly.
func (t *Table) Choose(d Direction, rng IntN) Layout {
	return t.layouts[d][rng.IntN(2)]
}

// MaxPlate is the largest resolved plate index any layout refers to.
func (t *Table) MaxPlate() (ans int) {
	for _, d := range t.layouts {
		for _, l := range d {
			ans = max(ans, PlateIndex(slices.Max(l.Plates)))
		}
	}
	return
}

// PlateIndex maps a raw table index to a position in the plate list. Raw
// indices up to 211 are one behind the list.
func PlateIndex(raw int) int {
	if raw <= 211 {
		return raw + 1
	}
	return raw
}

// Targets returns the set of resolved plate positions lit by l.
func (l Layout) Targets() map[int]bool {
	ans := make(map[int]bool, len(l.Plates))
	for _, p := range l.Plates {
		ans[PlateIndex(p)] = true
	}
	return ans
}
