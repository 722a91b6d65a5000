package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes an RGB frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(rgb *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// StaticImageMode treats every frame independently, with no tracking between frames.
	StaticImageMode bool

	// MaxHands is the maximum number of hands to detect.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	// Ignored in static image mode.
	MinTrackingConf float64
}

// DefaultConfig returns the detector settings used by the recognizer.
func DefaultConfig() Config {
	return Config{
		StaticImageMode: true,
		MaxHands:        2,
		MinConfidence:   0.3,
		MinTrackingConf: 0.5,
	}
}
