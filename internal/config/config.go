// Package config holds the runtime configuration for signcam.
// Values come from defaults, then SIGNCAM_* environment variables, then CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Default configuration values.
const (
	DefaultModelPath   = "sign_language_model.onnx"
	DefaultDatasetPath = "sign_language_dataset.npz"
	DefaultLabelsKey   = "labels"
	DefaultWindowName  = "frame"
	DefaultQuitKey     = 'q'
	DefaultKeyDelayMs  = 1
	DefaultMinConf     = 0.3
	DefaultMaxHands    = 2
	DefaultBoxOffset   = 10
	DefaultHookTimeout = 5000
	DefaultLogLevel    = "info"
	dataDirName        = ".signcam"
)

// Config holds every tunable of the recognition pipeline.
type Config struct {
	CameraID    int
	ModelPath   string
	DatasetPath string
	LabelsKey   string
	DBPath      string
	PluginDir   string

	WindowName string
	QuitKey    rune
	KeyDelayMs int

	StaticImageMode        bool
	MaxHands               int
	MinDetectionConfidence float64
	BoxOffset              int

	ServeAddr     string
	WebDir        string
	LogLevel      string
	HookTimeoutMs int
}

// Default returns a Config with the built-in defaults.
// Data paths live under ~/.signcam; if the home directory is unknown they are relative.
func Default() Config {
	dataDir := dataDirName
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, dataDirName)
	}

	return Config{
		CameraID:               0,
		ModelPath:              DefaultModelPath,
		DatasetPath:            DefaultDatasetPath,
		LabelsKey:              DefaultLabelsKey,
		DBPath:                 filepath.Join(dataDir, "signcam.db"),
		PluginDir:              filepath.Join(dataDir, "plugins"),
		WindowName:             DefaultWindowName,
		QuitKey:                DefaultQuitKey,
		KeyDelayMs:             DefaultKeyDelayMs,
		StaticImageMode:        true,
		MaxHands:               DefaultMaxHands,
		MinDetectionConfidence: DefaultMinConf,
		BoxOffset:              DefaultBoxOffset,
		LogLevel:               DefaultLogLevel,
		HookTimeoutMs:          DefaultHookTimeout,
	}
}

// FromEnv overlays SIGNCAM_* environment variables onto cfg.
// Malformed numeric values are reported rather than ignored.
func FromEnv(cfg Config) (Config, error) {
	return fromLookup(cfg, os.LookupEnv)
}

func fromLookup(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	var errs []error
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	integer("SIGNCAM_CAMERA", &cfg.CameraID)
	str("SIGNCAM_MODEL", &cfg.ModelPath)
	str("SIGNCAM_DATASET", &cfg.DatasetPath)
	str("SIGNCAM_LABELS_KEY", &cfg.LabelsKey)
	str("SIGNCAM_DB", &cfg.DBPath)
	str("SIGNCAM_PLUGINS", &cfg.PluginDir)
	str("SIGNCAM_SERVE", &cfg.ServeAddr)
	str("SIGNCAM_WEB", &cfg.WebDir)
	str("SIGNCAM_LOG_LEVEL", &cfg.LogLevel)
	integer("SIGNCAM_MAX_HANDS", &cfg.MaxHands)

	if v, ok := lookup("SIGNCAM_MIN_CONFIDENCE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("SIGNCAM_MIN_CONFIDENCE: %w", err))
		} else {
			cfg.MinDetectionConfidence = f
		}
	}

	return cfg, errors.Join(errs...)
}

// Validate checks that cfg can drive the pipeline.
func (c Config) Validate() error {
	switch {
	case c.CameraID < 0:
		return fmt.Errorf("camera id must not be negative, got %d", c.CameraID)
	case c.ModelPath == "":
		return errors.New("model path is required")
	case c.DatasetPath == "":
		return errors.New("dataset path is required")
	case c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1:
		return fmt.Errorf("min detection confidence must be within [0,1], got %g", c.MinDetectionConfidence)
	case c.MaxHands < 1:
		return fmt.Errorf("max hands must be at least 1, got %d", c.MaxHands)
	case c.KeyDelayMs < 1:
		return fmt.Errorf("key delay must be at least 1ms, got %d", c.KeyDelayMs)
	}
	return nil
}
