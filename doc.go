/*
Package trivector runs a trivector colour vision test.

A display is calibrated from four measured colours, after which an adaptive
staircase is run along each colour confusion axis. Every trial shows a figure
of plates pointing up, left, down or right, drawn in a colour displaced from
neutral along one axis, and the subject answers with the direction they saw.
Thresholds shrink on correct answers and grow on misses until each axis
converges, and the per-axis results are aggregated from the thresholds banked
at reversals.

The colour maths lives in colorspace, calibration and confusion; the state
machine in staircase. This package wires them to the outside world through
StimulusSink, ResponseSource and staircase.Sink.
*/
package trivector

import "fmt"

type SemVer struct {
	Major, Minor, Patch uint
}

func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v SemVer) Equal(o SemVer) bool {
	return v.Major == o.Major && v.Minor == o.Minor && v.Patch == o.Patch
}

func (v SemVer) After(o SemVer) bool {
	switch {
	case v.Major != o.Major:
		return v.Major > o.Major
	case v.Minor != o.Minor:
		return v.Minor > o.Minor
	}
	return v.Patch > o.Patch
}

func (v SemVer) Before(o SemVer) bool {
	return !v.Equal(o) && !v.After(o)
}

var Version = SemVer{0, 3, 0}
