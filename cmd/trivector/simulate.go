package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kovidgoyal/trivector"
	"github.com/kovidgoyal/trivector/internal/config"
	"github.com/kovidgoyal/trivector/observer"
	"github.com/kovidgoyal/trivector/render"
)

func newSimulateCmd() *cobra.Command {
	var (
		primaries  string
		plates     string
		thresholds string
		sigma      float64
		seed       uint64
		out        string
		preview    bool
		format     string
		animation  bool
		size       int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a test against a simulated observer",
		Long: `Run a complete test with a simulated observer whose true threshold on each
axis is given by --thresholds. Trials are logged to CSV and XLSX in the output
directory, and every stimulus can be written out as an image.

Example: trivector simulate --primaries monitor.csv --thresholds 0.01,0.02,0.04 --preview --animation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load_config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if out != "" {
				cfg.OutputDir = out
			}
			if plates != "" {
				cfg.PlatesFile = plates
			}
			if format != "" {
				cfg.PreviewFormat = format
			}
			truth, err := config.ParseFloats(thresholds)
			if err != nil {
				return err
			}
			o, sinks, err := open_outputs(cfg, log, "simulated")
			if err != nil {
				return err
			}
			defer func() {
				if cerr := o.close(); cerr != nil {
					log.Error("closing outputs: %s", cerr)
				}
			}()
			s, err := new_session(cfg, log, primaries, sinks)
			if err != nil {
				return err
			}
			if _, err = s.Start(); err != nil {
				return err
			}

			var screen *render.Sink
			if preview || animation {
				ps, err := load_plates(cfg.PlatesFile)
				if err != nil {
					return err
				}
				still, err := render.FormatFromExtension(cfg.PreviewFormat)
				if err != nil {
					return err
				}
				dir := ""
				if preview {
					dir = filepath.Join(cfg.OutputDir, "stimuli")
					if err = os.MkdirAll(dir, 0o755); err != nil {
						return err
					}
				}
				screen = render.NewSink(dir, still, ps, s.Engine())
				screen.Width, screen.Height = size, size
				if animation {
					screen.Animation = &render.Animation{}
				}
			}

			subject, err := observer.NewSimulated(truth, sigma, rand.New(rand.NewPCG(cfg.Seed, ^cfg.Seed)))
			if err != nil {
				return err
			}
			log.Info("session %s: simulating observer with thresholds %v", s.ID, truth)
			var present trivector.StimulusSink = discard_screen{}
			if screen != nil {
				present = screen
			}
			finals, err := s.Run(cmd.Context(), present, subject)
			if err != nil {
				return err
			}
			if screen != nil && screen.Animation != nil {
				if err = save_animation(filepath.Join(cfg.OutputDir, "simulated.png"), screen.Animation); err != nil {
					return err
				}
				log.Info("animation of %d trials saved", len(screen.Animation.Frames))
			}
			print_finals(cmd.OutOrStdout(), finals)
			return nil
		},
	}

	cmd.Flags().StringVar(&primaries, "primaries", "", "CSV or XLSX file with red, green, blue and white measurements")
	cmd.Flags().StringVar(&plates, "plates", "", "CSV file of plate positions (default: generated hexagonal grid)")
	cmd.Flags().StringVar(&thresholds, "thresholds", "0.01,0.02,0.04", "True threshold of the simulated observer on each axis")
	cmd.Flags().Float64Var(&sigma, "sigma", 0.005, "Spread of the simulated psychometric function")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (overrides TRIVECTOR_SEED)")
	cmd.Flags().StringVar(&out, "out", "", "Output directory (overrides TRIVECTOR_OUTPUT_DIR)")
	cmd.Flags().BoolVar(&preview, "preview", false, "Write every stimulus as an image")
	cmd.Flags().StringVar(&format, "format", "", "Image format of --preview: png, bmp or tiff (overrides TRIVECTOR_PREVIEW_FORMAT)")
	cmd.Flags().BoolVar(&animation, "animation", false, "Also write all stimuli as an animated PNG")
	cmd.Flags().IntVar(&size, "size", render.DefaultSize, "Width and height of rendered stimuli in pixels")

	return cmd
}

func save_animation(path string, a *render.Animation) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if err = a.Encode(f); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
