package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kovidgoyal/trivector/errs"
	"github.com/kovidgoyal/trivector/internal/logging"
)

func newRunCmd() *cobra.Command {
	var (
		primaries string
		plates    string
		subject   string
		out       string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Test a subject interactively in the terminal",
		Long: `Test a subject in the terminal. Each trial shows a figure of coloured plates
pointing up, left, down or right; answer with the arrow keys (or h, j, k, l).
Escape or Ctrl-C abandons the test. Trials are logged to <subject>.csv and
<subject>.xlsx in the output directory, diagnostics to <subject>.log.

The terminal must support 24-bit colour for the stimuli to be accurate.

Example: trivector run --primaries monitor.csv --subject alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load_config()
			if err != nil {
				return err
			}
			if err = check_subject(subject); err != nil {
				return err
			}
			if out != "" {
				cfg.OutputDir = out
			}
			if plates != "" {
				cfg.PlatesFile = plates
			}
			if err = os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
				return err
			}
			// the terminal owns the screen, so diagnostics go to a file
			log_file, err := os.Create(filepath.Join(cfg.OutputDir, subject+".log"))
			if err != nil {
				return err
			}
			defer log_file.Close()
			log := logging.New(log_file, cfg.LogLevel)

			ps, err := load_plates(cfg.PlatesFile)
			if err != nil {
				return err
			}
			o, sinks, err := open_outputs(cfg, log, subject)
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
			log.Info("session %s: testing %s", s.ID, subject)

			term, err := NewTerminal(ps, s.Engine())
			if err != nil {
				return err
			}
			finals, err := s.Run(cmd.Context(), term, term)
			term.Close()
			if errors.Is(err, ErrAborted) {
				log.Warn("session %s: aborted after %d trials", s.ID, term.trials)
				cmd.PrintErrln("test aborted, trials so far are in", cfg.OutputDir)
				return nil
			}
			if err != nil {
				return err
			}
			print_finals(cmd.OutOrStdout(), finals)
			return nil
		},
	}

	cmd.Flags().StringVar(&primaries, "primaries", "", "CSV or XLSX file with red, green, blue and white measurements")
	cmd.Flags().StringVar(&plates, "plates", "", "CSV file of plate positions (default: generated hexagonal grid)")
	cmd.Flags().StringVar(&subject, "subject", "subject", "Name of the subject, used for the output files")
	cmd.Flags().StringVar(&out, "out", "", "Output directory (overrides TRIVECTOR_OUTPUT_DIR)")

	return cmd
}

// check_subject rejects subject IDs that are not plain file name stems, as
// they name the session's output files.
func check_subject(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || filepath.Base(id) != id {
		return errs.Newf(errs.ConfigInvalid, "subject %q must be a plain name without path separators", id)
	}
	return nil
}
