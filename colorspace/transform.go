package colorspace

import (
	"fmt"
	"strings"
)

// Transform is a display calibration: the fitted XYZ->RGB matrix, its
// pseudo-inverse, and the luminance that maps to Y = 1. When the fit was
// overdetermined the two matrices are not exact inverses of each other.
// A Transform is a value; replace it whole, never field by field.
type Transform struct {
	XYZToRGB     Mat3
	RGBToXYZ     Mat3
	MaxLuminance float64
}

// IsZero reports whether t is the zero Transform, i.e. no calibration has
// been installed.
func (t Transform) IsZero() bool {
	return t == Transform{}
}

func (t Transform) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "max luminance: %g\n", t.MaxLuminance)
	write := func(name string, m Mat3) {
		fmt.Fprintf(&b, "%s:\n", name)
		for _, row := range m {
			fmt.Fprintf(&b, "  % .6f % .6f % .6f\n", row[0], row[1], row[2])
		}
	}
	write("XYZ->RGB", t.XYZToRGB)
	write("RGB->XYZ", t.RGBToXYZ)
	return b.String()
}
