// Package config loads session settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kovidgoyal/trivector/errs"
	"github.com/kovidgoyal/trivector/internal/logging"
	"github.com/kovidgoyal/trivector/staircase"
)

type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
}

func (m MQTTConfig) Enabled() bool { return m.Broker != "" }

type Config struct {
	StartingThreshold float64
	StartingStep      int
	Axes              int
	// Azimuths in radians, empty for the default set.
	Azimuths        []float64
	Seed            uint64
	CalibrationFile string
	PlatesFile      string
	OutputDir       string
	PreviewFormat   string
	MQTT            MQTTConfig
	LogLevel        logging.Level
}

const (
	DefaultAxes          = 3
	DefaultOutputDir     = "."
	DefaultPreviewFormat = "png"
	DefaultMQTTTopic     = "trivector/trials"
	DefaultMQTTClientID  = "trivector"
)

var preview_formats = map[string]bool{"png": true, "bmp": true, "tif": true, "tiff": true}

// Load reads the given .env files, or ./.env when none are named, into the
// environment without overriding variables already set, then calls FromEnv.
// A missing default .env is not an error.
func Load(env_files ...string) (*Config, error) {
	if len(env_files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.WithCode(errs.ConfigInvalid, err), "reading .env")
		}
	} else if err := godotenv.Load(env_files...); err != nil {
		return nil, errs.Wrapf(errs.WithCode(errs.ConfigInvalid, err), "reading %s", strings.Join(env_files, ", "))
	}
	return FromEnv()
}

// FromEnv builds a validated Config from TRIVECTOR_* variables and LOG_LEVEL.
func FromEnv() (*Config, error) {
	c := &Config{
		CalibrationFile: os.Getenv("TRIVECTOR_CALIBRATION_FILE"),
		PlatesFile:      os.Getenv("TRIVECTOR_PLATES_FILE"),
		OutputDir:       getEnvOrDefault("TRIVECTOR_OUTPUT_DIR", DefaultOutputDir),
		PreviewFormat:   strings.ToLower(getEnvOrDefault("TRIVECTOR_PREVIEW_FORMAT", DefaultPreviewFormat)),
		MQTT: MQTTConfig{
			Broker:   os.Getenv("TRIVECTOR_MQTT_BROKER"),
			Topic:    getEnvOrDefault("TRIVECTOR_MQTT_TOPIC", DefaultMQTTTopic),
			ClientID: getEnvOrDefault("TRIVECTOR_MQTT_CLIENT_ID", DefaultMQTTClientID),
		},
	}
	var err error
	if c.StartingThreshold, err = getEnvFloat("TRIVECTOR_STARTING_THRESHOLD", staircase.StartingThreshold); err != nil {
		return nil, err
	}
	if c.StartingStep, err = getEnvInt("TRIVECTOR_STARTING_STEP", staircase.StartingStep); err != nil {
		return nil, err
	}
	if c.Axes, err = getEnvInt("TRIVECTOR_AXES", DefaultAxes); err != nil {
		return nil, err
	}
	if c.Azimuths, err = ParseFloats(os.Getenv("TRIVECTOR_AZIMUTHS")); err != nil {
		return nil, errs.Wrap(err, "TRIVECTOR_AZIMUTHS")
	}
	c.Seed = uint64(time.Now().UnixNano())
	if v := os.Getenv("TRIVECTOR_SEED"); v != "" {
		if c.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, errs.Newf(errs.ConfigInvalid, "TRIVECTOR_SEED: %q is not an unsigned integer", v)
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var ok bool
		if c.LogLevel, ok = logging.ParseLevel(v); !ok {
			return nil, errs.Newf(errs.ConfigInvalid, "LOG_LEVEL: unknown level %q", v)
		}
	} else {
		c.LogLevel = logging.LevelInfo
	}
	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case math.IsNaN(c.StartingThreshold) || c.StartingThreshold < staircase.Floor || c.StartingThreshold > staircase.Ceiling:
		return errs.Newf(errs.ConfigInvalid, "starting threshold %v outside [%v, %v]", c.StartingThreshold, staircase.Floor, staircase.Ceiling)
	case c.StartingStep <= 0 || c.StartingStep >= 100:
		return errs.Newf(errs.ConfigInvalid, "starting step %d%% outside (0, 100)", c.StartingStep)
	case c.Axes < 1:
		return errs.Newf(errs.ConfigInvalid, "need at least one axis, got %d", c.Axes)
	case len(c.Azimuths) > 0 && len(c.Azimuths) != c.Axes:
		return errs.Newf(errs.ConfigInvalid, "%d azimuths given for %d axes", len(c.Azimuths), c.Axes)
	case !preview_formats[c.PreviewFormat]:
		return errs.Newf(errs.ConfigInvalid, "unsupported preview format %q", c.PreviewFormat)
	case c.MQTT.Enabled() && c.MQTT.Topic == "":
		return errs.New(errs.ConfigInvalid, "an MQTT topic is required when a broker is set")
	}
	return nil
}

// ParseFloats parses a comma separated list, ignoring blank entries.
func ParseFloats(s string) ([]float64, error) {
	var ans []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errs.Newf(errs.ConfigInvalid, "%q is not a finite number", part)
		}
		ans = append(ans, v)
	}
	return ans, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	ans, err := strconv.Atoi(value)
	if err != nil {
		return 0, errs.Newf(errs.ConfigInvalid, "%s: %q is not an integer", key, value)
	}
	return ans, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	ans, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errs.Newf(errs.ConfigInvalid, "%s: %q is not a number", key, value)
	}
	return ans, nil
}

func (c *Config) String() string {
	return fmt.Sprintf("threshold=%g step=%d%% axes=%d azimuths=%v seed=%d output=%s preview=%s mqtt=%q",
		c.StartingThreshold, c.StartingStep, c.Axes, c.Azimuths, c.Seed, c.OutputDir, c.PreviewFormat, c.MQTT.Broker)
}
