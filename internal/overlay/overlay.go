// Package overlay draws recognition results onto BGR frames.
package overlay

import (
	"image"
	"image/color"

	"github.com/ayusman/signcam/internal/detector"
	"gocv.io/x/gocv"
)

// Overlay text.
const (
	NoHandText = "No Hand Detected"
	ErrorText  = "Error"
)

// Style controls how annotations are drawn.
type Style struct {
	Color         color.RGBA
	FontScale     float64
	TextThickness int
	BoxThickness  int
	// LabelLift is how far above the box the label baseline sits.
	LabelLift int
	// NoHandOrigin is where the "No Hand Detected" message is drawn.
	NoHandOrigin image.Point

	JointColor      color.RGBA
	JointRadius     int
	ConnectionColor color.RGBA
	ConnectionWidth int
}

// DefaultStyle returns black anti-aliased text at scale 1.3 and a 4px box.
func DefaultStyle() Style {
	return Style{
		Color:           color.RGBA{0, 0, 0, 0},
		FontScale:       1.3,
		TextThickness:   3,
		BoxThickness:    4,
		LabelLift:       10,
		NoHandOrigin:    image.Pt(10, 50),
		JointColor:      color.RGBA{R: 255, G: 48, B: 48},
		JointRadius:     4,
		ConnectionColor: color.RGBA{R: 224, G: 224, B: 224},
		ConnectionWidth: 2,
	}
}

// DrawLandmarks draws the hand skeleton. Landmark coordinates are scaled from
// [0,1] to the frame size. Connections whose endpoints were not reported are skipped.
func (s Style) DrawLandmarks(frame *gocv.Mat, hand *detector.HandLandmarks) {
	if hand == nil || len(hand.Points) == 0 {
		return
	}

	w, h := frame.Cols(), frame.Rows()
	pixel := func(p detector.Point3D) image.Point {
		return image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
	}

	for _, c := range detector.HandConnections {
		if c.From >= len(hand.Points) || c.To >= len(hand.Points) {
			continue
		}
		gocv.Line(frame, pixel(hand.Points[c.From]), pixel(hand.Points[c.To]), s.ConnectionColor, s.ConnectionWidth)
	}

	for _, p := range hand.Points {
		gocv.Circle(frame, pixel(p), s.JointRadius, s.JointColor, -1)
	}
}

// DrawPrediction draws the bounding box and the label just above it.
func (s Style) DrawPrediction(frame *gocv.Mat, box image.Rectangle, label string) {
	gocv.Rectangle(frame, box, s.Color, s.BoxThickness)
	s.putText(frame, label, image.Pt(box.Min.X, box.Min.Y-s.LabelLift))
}

// DrawError labels a hand whose classification failed. No box is drawn.
func (s Style) DrawError(frame *gocv.Mat, box image.Rectangle) {
	s.putText(frame, ErrorText, image.Pt(box.Min.X, box.Min.Y-s.LabelLift))
}

// DrawNoHand draws the insufficient-landmarks message at the fixed position.
func (s Style) DrawNoHand(frame *gocv.Mat) {
	s.putText(frame, NoHandText, s.NoHandOrigin)
}

func (s Style) putText(frame *gocv.Mat, text string, org image.Point) {
	gocv.PutTextWithParams(frame, text, org, gocv.FontHersheySimplex, s.FontScale, s.Color, s.TextThickness, gocv.LineAA, false)
}
