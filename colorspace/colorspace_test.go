package colorspace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nearlyEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

var chromaCases = []struct {
	name string
	lxy  Lxy
}{
	{"D65 white", Lxy{100, 0.3127, 0.3290}},
	{"sRGB red", Lxy{21.26, 0.64, 0.33}},
	{"sRGB green", Lxy{71.52, 0.30, 0.60}},
	{"sRGB blue", Lxy{7.22, 0.15, 0.06}},
	{"dim neutral", Lxy{6, 0.3101, 0.3162}},
}

func TestLxyXYZ_Roundtrip_TableDriven(t *testing.T) {
	const eps = 1e-12
	for _, tc := range chromaCases {
		t.Run(tc.name, func(t *testing.T) {
			xyz := LxyToXYZ(tc.lxy, 100)
			back := XYZToLxy(xyz, 100)
			if !nearlyEqual(tc.lxy.L, back.L, eps) || !nearlyEqual(tc.lxy.X, back.X, eps) || !nearlyEqual(tc.lxy.Y, back.Y, eps) {
				t.Fatalf("roundtrip mismatch for %s: in=%v out=%v", tc.name, tc.lxy, back)
			}
		})
	}
}

func TestLxyLuv_Roundtrip_TableDriven(t *testing.T) {
	const eps = 1e-12
	for _, tc := range chromaCases {
		t.Run(tc.name, func(t *testing.T) {
			back := LuvToLxy(LxyToLuv(tc.lxy))
			if !nearlyEqual(tc.lxy.X, back.X, eps) || !nearlyEqual(tc.lxy.Y, back.Y, eps) {
				t.Fatalf("roundtrip mismatch for %s: in=%v out=%v", tc.name, tc.lxy, back)
			}
			require.Equal(t, tc.lxy.L, back.L)
		})
	}
}

func TestLxyToXYZ(t *testing.T) {
	xyz := LxyToXYZ(Lxy{50, 0.3127, 0.3290}, 100)
	assert.InDelta(t, 0.5, xyz.Y, 1e-15)
	assert.InDelta(t, 0.3127*0.5/0.3290, xyz.X, 1e-15)
	assert.InDelta(t, (1-0.3127-0.3290)*0.5/0.3290, xyz.Z, 1e-15)
}

func TestDegenerateGuards(t *testing.T) {
	require.Equal(t, XYZ{}, LxyToXYZ(Lxy{L: 40, X: 0.3, Y: 0}, 100))
	require.Equal(t, Lxy{}, XYZToLxy(XYZ{}, 100))
	require.Equal(t, Lxy{}, XYZToLxy(XYZ{X: 1, Y: -0.5, Z: -0.5}, 100))
	// u = 0, v = 0.75 lies on 6u - 16v + 12 = 0
	require.Equal(t, Lxy{}, LuvToLxy(Luv{L: 10, U: 0, V: 0.75}))
	require.Equal(t, XYZ{}, LuvToXYZ(Luv{L: 10, U: 0, V: 0.75}, 100))
}

func TestNeutralPointChromaticity(t *testing.T) {
	// the u'v' neutral used by the confusion model sits close to D65
	lxy := LuvToLxy(Luv{L: 1, U: 0.1977, V: 0.4689})
	assert.InDelta(t, 0.3127, lxy.X, 2e-3)
	assert.InDelta(t, 0.3290, lxy.Y, 2e-3)
}

func TestRowVectorProduct(t *testing.T) {
	tr := Transform{
		XYZToRGB: Mat3{
			{1, 2, 3},
			{0, 1, 0},
			{0, 0, 1},
		},
		RGBToXYZ:     Identity(),
		MaxLuminance: 1,
	}
	// v * M: first row of M is scaled by v[0]
	got := XYZToRGB(XYZ{X: 2, Y: 1, Z: 1}, tr)
	require.Equal(t, RGB{R: 2, G: 5, B: 7}, got)
	require.Equal(t, XYZ{X: 0.25, Y: 0.5, Z: 1}, RGBToXYZ(RGB{0.25, 0.5, 1}, tr))
}

func TestLuvToRGBComposition(t *testing.T) {
	tr := Transform{XYZToRGB: Identity(), RGBToXYZ: Identity(), MaxLuminance: 80}
	c := Luv{L: 20, U: 0.19, V: 0.47}
	xyz := LuvToXYZ(c, 80)
	rgb := LuvToRGB(c, tr)
	require.Equal(t, RGB{xyz.X, xyz.Y, xyz.Z}, rgb)
}

func TestMulMat3(t *testing.T) {
	m := Mat3{{2, 0, 1}, {1, 3, 0}, {0, 1, 4}}
	require.Equal(t, m, MulMat3(m, Identity()))
	require.Equal(t, m, MulMat3(Identity(), m))
	require.True(t, Transform{}.IsZero())
	require.False(t, Transform{MaxLuminance: 1}.IsZero())
}
