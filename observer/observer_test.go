package observer

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovidgoyal/trivector/errs"
	"github.com/kovidgoyal/trivector/layout"
	"github.com/kovidgoyal/trivector/staircase"
)

func TestPCorrect(t *testing.T) {
	s, err := NewSimulated([]float64{0.02, 0.05}, 0.005, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	assert.InDelta(t, Guess+(1-Guess)/2, s.PCorrect(0, 0.02), 1e-12)
	assert.InDelta(t, Guess, s.PCorrect(0, -1), 1e-9)
	assert.InDelta(t, 1, s.PCorrect(1, 1), 1e-9)
	assert.Less(t, s.PCorrect(1, 0.04), s.PCorrect(1, 0.06))
	// extra axes reuse the last curve
	assert.Equal(t, s.PCorrect(1, 0.05), s.PCorrect(7, 0.05))
}

func TestAnswer(t *testing.T) {
	s, err := NewSimulated([]float64{0.02}, 0.001, rand.New(rand.NewPCG(2, 3)))
	require.NoError(t, err)
	st := staircase.Stimulus{Direction: layout.Left, Magnitude: 0.1}
	for range 100 {
		require.Equal(t, layout.Left, s.Answer(st))
	}
	st.Magnitude = 0
	wrong := map[layout.Direction]int{}
	for range 2000 {
		d := s.Answer(st)
		require.True(t, d.Valid())
		if d != layout.Left {
			wrong[d]++
		}
	}
	require.Len(t, wrong, 3)
	total := 0
	for _, n := range wrong {
		total += n
	}
	// about three quarters wrong when the figure is invisible
	assert.InDelta(t, 0.75, float64(total)/2000, 0.05)
}

func TestAwaitHonoursContext(t *testing.T) {
	s, err := NewSimulated([]float64{0.02}, 0.01, rand.New(rand.NewPCG(2, 3)))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	_, err = s.Await(ctx, staircase.Stimulus{})
	require.NoError(t, err)
	cancel()
	_, err = s.Await(ctx, staircase.Stimulus{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewSimulatedRejects(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 3))
	for name, tc := range map[string]struct {
		thresholds []float64
		sigma      float64
		rng        Rand
	}{
		"no thresholds":  {nil, 0.01, rng},
		"zero sigma":     {[]float64{0.02}, 0, rng},
		"no rng":         {[]float64{0.02}, 0.01, nil},
		"negative value": {[]float64{-0.02}, 0.01, rng},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewSimulated(tc.thresholds, tc.sigma, tc.rng)
			require.True(t, errs.Is(err, errs.ConfigInvalid), "%v", err)
		})
	}
}
