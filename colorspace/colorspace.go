package colorspace

import (
	"fmt"
)

// This package converts between the four colour representations used by the
// test: luminance plus CIE 1931 chromaticity (lxy), luminance plus CIE 1976
// u'v' chromaticity (Luv), CIE XYZ tristimulus values and device RGB output
// channels.
//
// Notes:
//   - Luminance in lxy and Luv is absolute (the units of the photometer, for
//     example cd/m^2). XYZ is relative, with Y = 1 at the display's maximum
//     luminance.
//   - Conversions that would divide by zero return an all-zero value instead
//     of propagating Inf/NaN. Edge colours near the gamut boundary hit this
//     and the rest of the pipeline treats zero as "no light".
//   - XYZ <-> RGB are row-vector by matrix products, v * M, which is the
//     orientation the calibration fit produces.

var _ = fmt.Print

type Vec3 [3]float64
type Mat3 [3][3]float64

// Lxy is luminance plus CIE 1931 xy chromaticity.
type Lxy struct {
	L, X, Y float64
}

// Luv is luminance plus CIE 1976 u'v' chromaticity.
type Luv struct {
	L, U, V float64
}

// XYZ is CIE tristimulus, normalised so Y = 1 at maximum luminance.
type XYZ struct {
	X, Y, Z float64
}

// RGB is the displayable channel triplet. Range and gamut are not
// validated here.
type RGB struct {
	R, G, B float64
}

func (c Lxy) String() string { return fmt.Sprintf("lxy{%g %g %g}", c.L, c.X, c.Y) }
func (c Luv) String() string { return fmt.Sprintf("Luv{%g %g %g}", c.L, c.U, c.V) }
func (c XYZ) String() string { return fmt.Sprintf("XYZ{%g %g %g}", c.X, c.Y, c.Z) }
func (c RGB) String() string { return fmt.Sprintf("RGB{%g %g %g}", c.R, c.G, c.B) }

func (c XYZ) Vec() Vec3 { return Vec3{c.X, c.Y, c.Z} }
func (c RGB) Vec() Vec3 { return Vec3{c.R, c.G, c.B} }

// Public API

// LxyToXYZ converts absolute luminance and xy chromaticity to relative XYZ.
// A zero y chromaticity yields XYZ{}.
func LxyToXYZ(c Lxy, maxLuminance float64) XYZ {
	if c.Y == 0 {
		return XYZ{}
	}
	Y := c.L / maxLuminance
	return XYZ{
		X: c.X * Y / c.Y,
		Y: Y,
		Z: (1 - c.X - c.Y) * Y / c.Y,
	}
}

// XYZToLxy is the inverse of LxyToXYZ. XYZ values summing to zero yield Lxy{}.
func XYZToLxy(c XYZ, maxLuminance float64) Lxy {
	d := c.X + c.Y + c.Z
	if d == 0 {
		return Lxy{}
	}
	return Lxy{
		L: c.Y * maxLuminance,
		X: c.X / d,
		Y: c.Y / d,
	}
}

// LuvToLxy converts u'v' chromaticity to xy, carrying luminance through. The
// line 6u - 16v + 12 = 0 has no xy image, points on it yield Lxy{}.
func LuvToLxy(c Luv) Lxy {
	d := 6*c.U - 16*c.V + 12
	if d == 0 {
		return Lxy{}
	}
	return Lxy{
		L: c.L,
		X: 9 * c.U / d,
		Y: 4 * c.V / d,
	}
}

// LxyToLuv is the inverse of LuvToLxy, used when building neutral points from
// measured white. xy on the line -2x + 12y + 3 = 0 yields Luv{}.
func LxyToLuv(c Lxy) Luv {
	d := -2*c.X + 12*c.Y + 3
	if d == 0 {
		return Luv{}
	}
	return Luv{
		L: c.L,
		U: 4 * c.X / d,
		V: 9 * c.Y / d,
	}
}

func LuvToXYZ(c Luv, maxLuminance float64) XYZ {
	return LxyToXYZ(LuvToLxy(c), maxLuminance)
}

// XYZToRGB applies the forward calibration matrix.
func XYZToRGB(c XYZ, t Transform) RGB {
	v := mulVecMat3(c.Vec(), t.XYZToRGB)
	return RGB{v[0], v[1], v[2]}
}

// RGBToXYZ applies the inverse calibration matrix.
func RGBToXYZ(c RGB, t Transform) XYZ {
	v := mulVecMat3(c.Vec(), t.RGBToXYZ)
	return XYZ{v[0], v[1], v[2]}
}

func LuvToRGB(c Luv, t Transform) RGB {
	return XYZToRGB(LuvToXYZ(c, t.MaxLuminance), t)
}

// Matrix & vector utilities

// mulVecMat3 computes the row vector product v * m.
func mulVecMat3(v Vec3, m Mat3) (ans Vec3) {
	for j := range 3 {
		ans[j] = v[0]*m[0][j] + v[1]*m[1][j] + v[2]*m[2][j]
	}
	return
}

func MulMat3(a, b Mat3) Mat3 {
	var out Mat3
	for i := range 3 {
		for j := range 3 {
			sum := 0.0
			for k := range 3 {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

func Identity() Mat3 {
	return Mat3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}
