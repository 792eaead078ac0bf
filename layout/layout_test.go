package layout

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovidgoyal/trivector/errs"
)

var _ = fmt.Print

func TestDirections(t *testing.T) {
	testCases := []struct {
		d       Direction
		name    string
		degrees int
		button  string
	}{
		{Up, "up", 90, "Top Button"},
		{Left, "left", 180, "Left Button"},
		{Down, "down", 270, "Bottom Button"},
		{Right, "right", 0, "Right Button"},
	}
	for _, tc := range testCases {
		require.True(t, tc.d.Valid())
		require.Equal(t, tc.name, tc.d.String())
		require.Equal(t, tc.degrees, tc.d.Degrees())
		require.Equal(t, tc.button, tc.d.Button())
	}
	require.False(t, Direction(4).Valid())
	require.False(t, Direction(-1).Valid())
	require.Equal(t, "Direction(7)", Direction(7).String())
}

func TestDefaultTable(t *testing.T) {
	tbl := Default()
	for d := range Direction(NumDirections) {
		ls := tbl.Layouts(d)
		for _, l := range ls {
			require.NotEmpty(t, l.Plates, "%s %s", d, l.Name)
			seen := map[int]bool{}
			for _, p := range l.Plates {
				require.False(t, seen[p], "duplicate plate %d in %s", p, l.Name)
				seen[p] = true
			}
		}
		require.NotEqual(t, ls[0].Plates, ls[1].Plates, "%s layouts must differ", d)
	}
	require.Greater(t, tbl.MaxPlate(), 500)
}

func TestChooseCoversBothLayouts(t *testing.T) {
	tbl := Default()
	rng := rand.New(rand.NewPCG(3, 4))
	seen := map[string]bool{}
	for range 100 {
		seen[tbl.Choose(Left, rng).Name] = true
	}
	require.Len(t, seen, 2)
}

func TestPlateIndex(t *testing.T) {
	require.Equal(t, 1, PlateIndex(0))
	require.Equal(t, 212, PlateIndex(211))
	require.Equal(t, 212, PlateIndex(212))
	require.Equal(t, 590, PlateIndex(590))
	l := Layout{Plates: []int{0, 211, 300}}
	require.Equal(t, map[int]bool{1: true, 212: true, 300: true}, l.Targets())
}

func TestParseRejects(t *testing.T) {
	for name, src := range map[string]string{
		"not yaml":       "directions: [",
		"too few":        "directions:\n  - name: up\n    degrees: 90\n",
		"wrong order":    strings.Replace(valid_table, "name: up", "name: down", 1),
		"one layout":     strings.Replace(valid_table, "      - name: right-b\n        plates: [4]\n", "", 1),
		"negative plate": strings.Replace(valid_table, "plates: [4]", "plates: [-4]", 1),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			require.True(t, errs.Is(err, errs.InputFormat), "%v", err)
		})
	}
	tbl, err := Parse([]byte(valid_table))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, tbl.Layouts(Up)[0].Plates)
}

const valid_table = `directions:
  - name: up
    degrees: 90
    layouts:
      - name: up-a
        plates: [1, 2, 2, 1]
      - name: up-b
        plates: [3]
  - name: left
    degrees: 180
    layouts:
      - name: left-a
        plates: [1]
      - name: left-b
        plates: [2]
  - name: down
    degrees: 270
    layouts:
      - name: down-a
        plates: [1]
      - name: down-b
        plates: [2]
  - name: right
    degrees: 0
    layouts:
      - name: right-a
        plates: [3]
      - name: right-b
        plates: [4]
`

func TestLoadPlates(t *testing.T) {
	src := "label,x,y,z,area\np0,10,1.5,-2,4\n\np1,10,0,0,0.25\n"
	plates, err := LoadPlates(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, []Plate{
		{Name: "p0", X: 10, Y: 1.5, Z: -2, Radius: 2},
		{Name: "p1", X: 10, Radius: 0.5},
	}, plates)

	_, err = LoadPlates(strings.NewReader("label,x,y,z,area\np0,1,2,3\n"))
	require.True(t, errs.Is(err, errs.InputFormat))
	_, err = LoadPlates(strings.NewReader("label,x,y,z,area\np0,1,2,three,4\n"))
	require.True(t, errs.Is(err, errs.InputFormat))
	_, err = LoadPlates(strings.NewReader("label,x,y,z,area\np0,1,2,3,-4\n"))
	require.True(t, errs.Is(err, errs.InputFormat))
}

func TestHexPlates(t *testing.T) {
	require.Nil(t, HexPlates(0))
	one := HexPlates(1)
	require.Len(t, one, 1)
	assert.Equal(t, 0.0, one[0].Y)
	assert.Equal(t, 0.0, one[0].Z)

	n := Default().MaxPlate() + 1
	plates := HexPlates(n)
	require.Len(t, plates, n)
	// no two plates overlap
	for i := range 50 {
		for j := i + 1; j < len(plates); j++ {
			d := math.Hypot(plates[i].Y-plates[j].Y, plates[i].Z-plates[j].Z)
			require.Greater(t, d, plates[i].Radius+plates[j].Radius, "%d %d", i, j)
		}
	}
	// first ring is six unit neighbours
	for _, p := range plates[1:7] {
		assert.InDelta(t, 1, math.Hypot(p.Y, p.Z), 1e-12)
	}
}
