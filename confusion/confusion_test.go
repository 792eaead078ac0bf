package confusion

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovidgoyal/trivector/colorspace"
	"github.com/kovidgoyal/trivector/errs"
)

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func TestCanonicalAxes(t *testing.T) {
	m, err := NewModel(3, nil, seeded())
	require.NoError(t, err)
	require.Equal(t, 3, m.Len())
	require.Equal(t, 0.07, m.Axis(0).Azimuth)
	require.Equal(t, 5.98, m.Axis(1).Azimuth)
	require.Equal(t, 4.83, m.Axis(2).Azimuth)
	require.Equal(t, "tritan", m.Axis(2).Name)
}

func TestEvenlySpacedAxes(t *testing.T) {
	m, err := NewModel(4, nil, seeded())
	require.NoError(t, err)
	for i, want := range []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2} {
		assert.InDelta(t, want, m.Axis(i).Azimuth, 1e-12)
	}
	m, err = NewModel(2, []float64{1, 2}, seeded())
	require.NoError(t, err)
	require.Equal(t, []Axis{{"axis-0", 1}, {"axis-1", 2}}, m.Axes())
}

func TestNewModelRejects(t *testing.T) {
	_, err := NewModel(0, nil, seeded())
	require.True(t, errs.Is(err, errs.ConfigInvalid))
	_, err = NewModel(3, []float64{1, 2}, seeded())
	require.True(t, errs.Is(err, errs.ConfigInvalid))
	_, err = NewModel(3, nil, nil)
	require.True(t, errs.Is(err, errs.ConfigInvalid))
	_, err = NewModel(1, []float64{math.Inf(1)}, seeded())
	require.True(t, errs.Is(err, errs.ConfigInvalid))
}

func TestStimulusPointRadii(t *testing.T) {
	m, err := NewModel(5, nil, seeded())
	require.NoError(t, err)
	n := m.Neutral()
	for i := range m.Len() {
		start, end := m.StimulusPoint(i)
		assert.InDelta(t, NearRadius, math.Hypot(start.U-n.U, start.V-n.V), 1e-12)
		assert.InDelta(t, FarRadius, math.Hypot(end.U-n.U, end.V-n.V), 1e-12)
		// both ends lie on the same ray
		az := m.Axis(i).Azimuth
		assert.InDelta(t, math.Cos(az), (end.U-start.U)/(FarRadius-NearRadius), 1e-12)
		assert.InDelta(t, math.Sin(az), (end.V-start.V)/(FarRadius-NearRadius), 1e-12)
	}
}

func TestInterpolate(t *testing.T) {
	m, err := NewModel(3, nil, seeded())
	require.NoError(t, err)
	start := colorspace.Luv{L: 1, U: 0.2, V: 0.4}
	end := colorspace.Luv{L: 1, U: 0.6, V: 0.0}
	c := m.Interpolate(start, end, 0.5, 2)
	assert.InDelta(t, 0.3, c.U, 1e-12)
	assert.InDelta(t, 0.3, c.V, 1e-12)
	for range 200 {
		c = m.Interpolate(start, end, 0, 1)
		require.Equal(t, start.U, c.U)
		require.GreaterOrEqual(t, c.L, MinLuminance)
		require.Less(t, c.L, MinLuminance+LuminanceSpan)
	}
}

func TestBackgroundIsNeutral(t *testing.T) {
	m, err := NewModel(3, nil, seeded())
	require.NoError(t, err)
	a, b := m.Background(), m.Background()
	require.Equal(t, Neutral.U, a.U)
	require.Equal(t, Neutral.V, a.V)
	require.NotEqual(t, a.L, b.L)
}

func TestTargetIsDeterministicForSeed(t *testing.T) {
	m1, _ := NewModel(3, nil, seeded())
	m2, _ := NewModel(3, nil, seeded())
	for i := range 3 {
		require.Equal(t, m1.Target(i, 0.064), m2.Target(i, 0.064))
	}
}
