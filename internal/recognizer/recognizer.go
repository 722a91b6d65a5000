// Package recognizer annotates a single frame with sign predictions.
package recognizer

import (
	"errors"
	"image"

	"github.com/ayusman/signcam/internal/classifier"
	"github.com/ayusman/signcam/internal/detector"
	"github.com/ayusman/signcam/internal/gesture"
	"github.com/ayusman/signcam/internal/log"
	"github.com/ayusman/signcam/internal/overlay"
	"gocv.io/x/gocv"
)

// Status describes what happened to one detected hand.
type Status int

const (
	// StatusRecognized means the hand was classified and labelled.
	StatusRecognized Status = iota
	// StatusInsufficient means the hand lacked a full landmark set.
	StatusInsufficient
	// StatusFailed means classification or label decoding failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRecognized:
		return "recognized"
	case StatusInsufficient:
		return "insufficient"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// HandResult is the outcome for one detected hand.
type HandResult struct {
	Handedness string
	Box        image.Rectangle
	Label      string
	Confidence float32
	Status     Status
	Err        error
}

// Result is the outcome for one frame.
type Result struct {
	Hands []HandResult
	// NoHandMessage is set when the "No Hand Detected" message was drawn.
	NoHandMessage bool
	// DetectErr holds a detector failure; the frame was passed through.
	DetectErr error
}

// Recognized returns the hands that received a label.
func (r Result) Recognized() []HandResult {
	var out []HandResult
	for _, h := range r.Hands {
		if h.Status == StatusRecognized {
			out = append(out, h)
		}
	}
	return out
}

// Config holds the collaborators of a Recognizer. They are created once and
// shared for the lifetime of the process.
type Config struct {
	Detector   detector.Detector
	Classifier classifier.Classifier
	Labels     *gesture.LabelEncoder
	Style      overlay.Style
	BoxOffset  int
}

// Recognizer detects, classifies and annotates hands in frames.
// It keeps no state between frames.
type Recognizer struct {
	detector   detector.Detector
	classifier classifier.Classifier
	labels     *gesture.LabelEncoder
	style      overlay.Style
	boxOffset  int
}

// New creates a Recognizer.
func New(cfg Config) (*Recognizer, error) {
	switch {
	case cfg.Detector == nil:
		return nil, errors.New("recognizer: detector is required")
	case cfg.Classifier == nil:
		return nil, errors.New("recognizer: classifier is required")
	case cfg.Labels == nil:
		return nil, errors.New("recognizer: label encoder is required")
	}

	return &Recognizer{
		detector:   cfg.Detector,
		classifier: cfg.Classifier,
		labels:     cfg.Labels,
		style:      cfg.Style,
		boxOffset:  cfg.BoxOffset,
	}, nil
}

// Process annotates frame in place and reports what was found.
// Frames without hands, or whose detection failed, are left untouched.
func (r *Recognizer) Process(frame *gocv.Mat) Result {
	if frame == nil || frame.Empty() {
		return Result{}
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(*frame, &rgb, gocv.ColorBGRToRGB)

	hands, err := r.detector.Detect(&rgb)
	if err != nil {
		log.Warn("hand detection failed", "err", err)
		return Result{DetectErr: err}
	}
	if len(hands) == 0 {
		return Result{}
	}

	width, height := frame.Cols(), frame.Rows()
	result := Result{Hands: make([]HandResult, 0, len(hands))}

	for i := range hands {
		hand := &hands[i]
		r.style.DrawLandmarks(frame, hand)

		hr := r.classify(hand, width, height)
		switch hr.Status {
		case StatusRecognized:
			r.style.DrawPrediction(frame, hr.Box, hr.Label)
		case StatusFailed:
			log.Error("prediction error", "hand", i, "err", hr.Err)
			r.style.DrawError(frame, hr.Box)
		case StatusInsufficient:
			result.NoHandMessage = true
		}
		result.Hands = append(result.Hands, hr)
	}

	if result.NoHandMessage {
		r.style.DrawNoHand(frame)
	}

	return result
}

func (r *Recognizer) classify(hand *detector.HandLandmarks, width, height int) HandResult {
	hr := HandResult{Handedness: hand.Handedness}

	features, err := gesture.Features(hand)
	if err != nil {
		hr.Status = StatusInsufficient
		hr.Err = err
		return hr
	}
	hr.Box = gesture.BoundingBox(hand, width, height, r.boxOffset)

	probs, err := r.classifier.Predict(features)
	if err != nil {
		hr.Status = StatusFailed
		hr.Err = err
		return hr
	}

	index, confidence := classifier.Argmax(probs)
	label, err := r.labels.Decode(index)
	if err != nil {
		hr.Status = StatusFailed
		hr.Err = err
		return hr
	}

	hr.Label = label
	hr.Confidence = confidence
	hr.Status = StatusRecognized
	return hr
}
