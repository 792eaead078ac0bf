package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kovidgoyal/trivector"
	"github.com/kovidgoyal/trivector/calibration"
	"github.com/kovidgoyal/trivector/internal/config"
	"github.com/kovidgoyal/trivector/internal/logging"
	"github.com/kovidgoyal/trivector/layout"
	"github.com/kovidgoyal/trivector/staircase"
	"github.com/kovidgoyal/trivector/triallog"
)

func session_config(cfg *config.Config) trivector.SessionConfig {
	return trivector.SessionConfig{
		Axes:              cfg.Axes,
		Azimuths:          cfg.Azimuths,
		StartingThreshold: cfg.StartingThreshold,
		StartingStep:      cfg.StartingStep,
		Seed:              cfg.Seed,
	}
}

// load_plates reads plate positions, or generates enough of them for the
// built-in layouts when path is empty.
func load_plates(path string) ([]layout.Plate, error) {
	if path == "" {
		return layout.HexPlates(layout.Default().MaxPlate() + 1), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return layout.LoadPlates(f)
}

// outputs are the log destinations of one session.
type outputs struct {
	dir      string
	name     string
	csv_file *os.File
	workbook *triallog.Workbook
	mqtt     mqtt.Client
	log      *logging.Logger
}

func open_outputs(cfg *config.Config, log *logging.Logger, name string) (o *outputs, sinks []staircase.Sink, err error) {
	o = &outputs{dir: cfg.OutputDir, name: name, log: log}
	defer func() {
		if err != nil {
			o.close()
		}
	}()
	if err = os.MkdirAll(o.dir, 0o755); err != nil {
		return
	}
	if o.csv_file, err = os.Create(o.path(".csv")); err != nil {
		return
	}
	sinks = append(sinks, triallog.NewCSV(o.csv_file))
	if o.workbook, err = triallog.NewWorkbook(); err != nil {
		return
	}
	sinks = append(sinks, o.workbook)
	if cfg.MQTT.Enabled() {
		if o.mqtt, err = triallog.Dial(cfg.MQTT.Broker, cfg.MQTT.ClientID); err != nil {
			return
		}
		log.Info("publishing trials to %s on %s", cfg.MQTT.Topic, cfg.MQTT.Broker)
		sinks = append(sinks, triallog.NewMQTT(o.mqtt, cfg.MQTT.Topic))
	}
	return o, sinks, nil
}

func (o *outputs) path(ext string) string { return filepath.Join(o.dir, o.name+ext) }

// close saves the workbook and releases everything. It is safe to call on
// partially opened outputs.
func (o *outputs) close() error {
	var errs []error
	if o.workbook != nil {
		if err := o.workbook.Save(o.path(".xlsx")); err != nil {
			errs = append(errs, err)
		} else {
			o.log.Info("trial workbook saved to %s", o.path(".xlsx"))
		}
		errs = append(errs, o.workbook.Close())
		o.workbook = nil
	}
	if o.csv_file != nil {
		errs = append(errs, o.csv_file.Close())
		o.log.Info("trial log saved to %s", o.csv_file.Name())
		o.csv_file = nil
	}
	if o.mqtt != nil {
		o.mqtt.Disconnect(250)
		o.mqtt = nil
	}
	return errors.Join(errs...)
}

func new_session(cfg *config.Config, log *logging.Logger, primaries string, sinks []staircase.Sink) (*trivector.Session, error) {
	if primaries == "" {
		primaries = cfg.CalibrationFile
	}
	if primaries == "" {
		return nil, fmt.Errorf("no calibration file, use --primaries or TRIVECTOR_CALIBRATION_FILE")
	}
	p, err := calibration.LoadFile(primaries)
	if err != nil {
		return nil, err
	}
	opts := []trivector.Option{trivector.WithLogger(log)}
	for _, s := range sinks {
		opts = append(opts, trivector.WithSink(s))
	}
	s, err := trivector.NewSession(session_config(cfg), opts...)
	if err != nil {
		return nil, err
	}
	if err = s.Calibrate(p); err != nil {
		return nil, err
	}
	return s, nil
}

type discard_screen struct{}

func (discard_screen) Present(staircase.Stimulus) error { return nil }

func print_finals(w io.Writer, finals []staircase.FinalThreshold) {
	fmt.Fprintf(w, "%-8s %8s %10s %9s\n", "axis", "azimuth", "threshold", "reversals")
	for _, f := range finals {
		note := ""
		if f.Fallback {
			note = "  (no reversals)"
		}
		fmt.Fprintf(w, "%-8s %8.3f %10.5f %9d%s\n", f.Name, f.Azimuth, f.Value, f.Reversals, note)
	}
}
