package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kovidgoyal/trivector/calibration"
	"github.com/kovidgoyal/trivector/colorspace"
)

func newCalibrateCmd() *cobra.Command {
	var primaries string

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Solve a display calibration and print it",
		Long: `Solve the XYZ to RGB transform of a display from measured red, green, blue
and white, and print both matrices with the RGB the solved transform gives
for each measurement.

Example: trivector calibrate --primaries monitor.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load_config()
			if err != nil {
				return err
			}
			if primaries == "" {
				primaries = cfg.CalibrationFile
			}
			if primaries == "" {
				return fmt.Errorf("no calibration file, use --primaries or TRIVECTOR_CALIBRATION_FILE")
			}
			p, err := calibration.LoadFile(primaries)
			if err != nil {
				return err
			}
			t, err := calibration.Solve(p)
			if err != nil {
				return err
			}
			print_calibration(cmd.OutOrStdout(), p, t)
			return nil
		},
	}

	cmd.Flags().StringVar(&primaries, "primaries", "", "CSV or XLSX file with red, green, blue and white measurements")

	return cmd
}

func print_calibration(w io.Writer, p calibration.Primaries, t colorspace.Transform) {
	fmt.Fprint(w, t)
	fmt.Fprintln(w, "check:")
	for i, name := range []string{"red", "green", "blue", "white"} {
		rgb := colorspace.XYZToRGB(colorspace.LxyToXYZ(p.Slice()[i], t.MaxLuminance), t)
		fmt.Fprintf(w, "  %-5s -> % .4f % .4f % .4f\n", name, rgb.R, rgb.G, rgb.B)
	}
}
