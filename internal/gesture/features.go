// Package gesture turns hand landmarks into classifier features and decodes
// classifier output back into sign labels.
package gesture

import (
	"errors"
	"image"
	"math"

	"github.com/ayusman/signcam/internal/detector"
)

// FeatureLength is the number of features produced for one complete hand:
// an x and a y coordinate for each landmark.
const FeatureLength = detector.NumLandmarks * 2

// ErrInsufficientLandmarks is returned when a hand does not carry exactly
// detector.NumLandmarks points.
var ErrInsufficientLandmarks = errors.New("insufficient landmarks")

// Features builds the translation-normalized feature vector for one hand.
// Each coordinate has its axis minimum subtracted, so the vector describes the
// hand shape independent of where the hand sits in the frame. The result is
// ordered x0, y0, x1, y1, ... and always has FeatureLength elements.
func Features(hand *detector.HandLandmarks) ([]float32, error) {
	if !hand.Complete() {
		return nil, ErrInsufficientLandmarks
	}

	minX, minY, _, _ := extent(hand.Points)

	features := make([]float32, 0, FeatureLength)
	for _, p := range hand.Points {
		features = append(features, float32(p.X-minX), float32(p.Y-minY))
	}

	return features, nil
}

// BoundingBox returns the pixel rectangle around the hand for a frame of the
// given size. Every corner is shifted by -offset on both axes.
func BoundingBox(hand *detector.HandLandmarks, width, height, offset int) image.Rectangle {
	if hand == nil || len(hand.Points) == 0 {
		return image.Rectangle{}
	}

	minX, minY, maxX, maxY := extent(hand.Points)

	return image.Rectangle{
		Min: image.Point{
			X: int(minX*float64(width)) - offset,
			Y: int(minY*float64(height)) - offset,
		},
		Max: image.Point{
			X: int(maxX*float64(width)) - offset,
			Y: int(maxY*float64(height)) - offset,
		},
	}
}

// extent returns the per-axis minimum and maximum of points.
func extent(points []detector.Point3D) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)

	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	return minX, minY, maxX, maxY
}
