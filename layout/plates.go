package layout

import (
	"cmp"
	"encoding/csv"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/kovidgoyal/trivector/errs"
)

// Plate is one disc of the stimulus figure. X is depth, Y is horizontal and
// Z vertical, as exported from the scene the tables were authored in.
type Plate struct {
	Name    string
	X, Y, Z float64
	Radius  float64
}

// LoadPlates reads a header-prefixed CSV of name,x,y,z,area rows. The radius
// of each plate is the square root of its area column.
func LoadPlates(r io.Reader) ([]Plate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errs.WithCode(errs.InputFormat, err)
	}
	var ans []Plate
	for i, row := range rows {
		if i == 0 || len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if len(row) < 5 {
			return nil, errs.Newf(errs.InputFormat, "plate row %d: expected name,x,y,z,area got %d fields", i+1, len(row))
		}
		var v [4]float64
		for j := range 4 {
			if v[j], err = strconv.ParseFloat(strings.TrimSpace(row[j+1]), 64); err != nil {
				return nil, errs.Wrapf(errs.WithCode(errs.InputFormat, err), "plate row %d column %d", i+1, j+2)
			}
		}
		if v[3] < 0 {
			return nil, errs.Newf(errs.InputFormat, "plate row %d has negative area", i+1)
		}
		ans = append(ans, Plate{Name: row[0], X: v[0], Y: v[1], Z: v[2], Radius: math.Sqrt(v[3])})
	}
	return ans, nil
}

// HexPlates packs n unit-spaced plates into a hexagonal disc around the
// origin, innermost ring first. Used when no measured plate positions are
// available.
func HexPlates(n int) []Plate {
	if n <= 0 {
		return nil
	}
	type cell struct {
		q, r, ring int
		angle      float64
	}
	radius := 0
	for count := 1; count < n; count += 6 * radius {
		radius++
	}
	cells := make([]cell, 0, 1+3*radius*(radius+1))
	for q := -radius; q <= radius; q++ {
		for r := max(-radius, -q-radius); r <= min(radius, -q+radius); r++ {
			y, z := hex_center(q, r)
			ring := (abs(q) + abs(r) + abs(q+r)) / 2
			cells = append(cells, cell{q, r, ring, math.Atan2(z, y)})
		}
	}
	slices.SortFunc(cells, func(a, b cell) int {
		if c := cmp.Compare(a.ring, b.ring); c != 0 {
			return c
		}
		return cmp.Compare(a.angle, b.angle)
	})
	ans := make([]Plate, n)
	for i, c := range cells[:n] {
		y, z := hex_center(c.q, c.r)
		ans[i] = Plate{Name: "plate-" + strconv.Itoa(i), Y: y, Z: z, Radius: 0.46}
	}
	return ans
}

func hex_center(q, r int) (y, z float64) {
	return float64(q) + float64(r)/2, float64(r) * math.Sqrt(3) / 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
