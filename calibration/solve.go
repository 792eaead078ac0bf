// Package calibration fits a display's XYZ->RGB transform from four measured
// reference colours.
package calibration

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kovidgoyal/trivector/colorspace"
	"github.com/kovidgoyal/trivector/errs"
)

var _ = fmt.Print

// Singular values below rcond times the largest one are treated as zero.
const rcond = 1e-10

// Primaries are the photometer readings of the display's full red, green and
// blue channels and of full white. White.L is the display's maximum
// luminance.
type Primaries struct {
	Red, Green, Blue, White colorspace.Lxy
}

// PrimariesFromSlice accepts measurements in Red, Green, Blue, White order.
func PrimariesFromSlice(m []colorspace.Lxy) (Primaries, error) {
	if len(m) != 4 {
		return Primaries{}, errs.Newf(errs.CalibrationInput, "need exactly 4 measurements (red, green, blue, white), got %d", len(m))
	}
	return Primaries{Red: m[0], Green: m[1], Blue: m[2], White: m[3]}, nil
}

func (p Primaries) Slice() []colorspace.Lxy {
	return []colorspace.Lxy{p.Red, p.Green, p.Blue, p.White}
}

var channel_names = [4]string{"red", "green", "blue", "white"}

func (p Primaries) validate() error {
	for i, c := range p.Slice() {
		for _, v := range [3]float64{c.L, c.X, c.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errs.Newf(errs.CalibrationInput, "%s measurement is not finite: %v", channel_names[i], c)
			}
		}
	}
	if p.White.L <= 0 {
		return errs.Newf(errs.CalibrationInput, "white luminance must be positive, got %g", p.White.L)
	}
	return nil
}

// Solve fits XYZ->RGB in the least squares sense so that the three primaries
// map to the unit channel vectors and white maps to (1, 1, 1), then derives
// RGB->XYZ as the pseudo-inverse of the fit. Degenerate input, for example a
// primary with zero y chromaticity, is reported rather than producing a
// rank deficient transform.
func Solve(p Primaries) (ans colorspace.Transform, err error) {
	if err = p.validate(); err != nil {
		return
	}
	max_lum := p.White.L
	src := mat.NewDense(4, 3, nil)
	for i, c := range p.Slice() {
		xyz := colorspace.LxyToXYZ(c, max_lum)
		if xyz == (colorspace.XYZ{}) {
			return ans, errs.Newf(errs.CalibrationInput, "%s measurement %v has no tristimulus value", channel_names[i], c)
		}
		src.SetRow(i, []float64{xyz.X, xyz.Y, xyz.Z})
	}
	dst := mat.NewDense(4, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		1, 1, 1,
	})

	var svd mat.SVD
	if !svd.Factorize(src, mat.SVDThin) {
		return ans, errs.New(errs.CalibrationInput, "singular value decomposition of the measured primaries did not converge")
	}
	if rank := svd.Rank(rcond); rank < 3 {
		return ans, errs.Newf(errs.CalibrationInput, "measured primaries are degenerate: rank %d, need 3", rank)
	}
	var fit mat.Dense
	svd.SolveTo(&fit, dst, 3)

	forward := toMat3(&fit)
	inverse, err := pseudoInverse(&fit)
	if err != nil {
		return ans, err
	}
	ans = colorspace.Transform{XYZToRGB: forward, RGBToXYZ: inverse, MaxLuminance: max_lum}
	if !finite(ans.XYZToRGB) || !finite(ans.RGBToXYZ) {
		return colorspace.Transform{}, errs.New(errs.CalibrationInput, "calibration produced non-finite matrix entries")
	}
	return ans, nil
}

// pseudoInverse computes V * diag(1/s) * U^T, zeroing reciprocals of
// negligible singular values.
func pseudoInverse(m *mat.Dense) (colorspace.Mat3, error) {
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDFull) {
		return colorspace.Mat3{}, errs.New(errs.CalibrationInput, "singular value decomposition of the fitted transform did not converge")
	}
	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	tol := rcond * values[0]
	var ans colorspace.Mat3
	for i := range 3 {
		for j := range 3 {
			sum := 0.0
			for k, s := range values {
				if s > tol {
					sum += v.At(i, k) * u.At(j, k) / s
				}
			}
			ans[i][j] = sum
		}
	}
	return ans, nil
}

func toMat3(m mat.Matrix) (ans colorspace.Mat3) {
	for i := range 3 {
		for j := range 3 {
			ans[i][j] = m.At(i, j)
		}
	}
	return
}

func finite(m colorspace.Mat3) bool {
	for _, row := range m {
		for _, x := range row {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}
