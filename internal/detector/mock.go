package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(rgb *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// SignALandmarks returns a right hand forming the ASL letter A:
// a closed fist with the thumb resting against the side of the index finger.
func SignALandmarks() HandLandmarks {
	points := make([]Point3D, NumLandmarks)

	points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	points[ThumbCMC] = Point3D{X: 0.56, Y: 0.76, Z: -0.01}
	points[ThumbMCP] = Point3D{X: 0.60, Y: 0.70, Z: -0.02}
	points[ThumbIP] = Point3D{X: 0.61, Y: 0.64, Z: -0.03}
	points[ThumbTip] = Point3D{X: 0.61, Y: 0.59, Z: -0.03}

	points[IndexMCP] = Point3D{X: 0.56, Y: 0.62, Z: -0.02}
	points[IndexPIP] = Point3D{X: 0.57, Y: 0.56, Z: -0.05}
	points[IndexDIP] = Point3D{X: 0.56, Y: 0.60, Z: -0.06}
	points[IndexTip] = Point3D{X: 0.55, Y: 0.64, Z: -0.05}

	points[MiddleMCP] = Point3D{X: 0.51, Y: 0.61, Z: -0.02}
	points[MiddlePIP] = Point3D{X: 0.51, Y: 0.55, Z: -0.05}
	points[MiddleDIP] = Point3D{X: 0.51, Y: 0.59, Z: -0.06}
	points[MiddleTip] = Point3D{X: 0.51, Y: 0.63, Z: -0.05}

	points[RingMCP] = Point3D{X: 0.46, Y: 0.62, Z: -0.02}
	points[RingPIP] = Point3D{X: 0.46, Y: 0.57, Z: -0.05}
	points[RingDIP] = Point3D{X: 0.46, Y: 0.61, Z: -0.06}
	points[RingTip] = Point3D{X: 0.46, Y: 0.65, Z: -0.05}

	points[PinkyMCP] = Point3D{X: 0.42, Y: 0.65, Z: -0.02}
	points[PinkyPIP] = Point3D{X: 0.41, Y: 0.61, Z: -0.04}
	points[PinkyDIP] = Point3D{X: 0.41, Y: 0.64, Z: -0.05}
	points[PinkyTip] = Point3D{X: 0.42, Y: 0.67, Z: -0.04}

	return HandLandmarks{Points: points, Handedness: "Right", Score: 0.95}
}

// OpenPalmLandmarks returns a right hand with all fingers extended,
// the shape of the ASL letter B with the thumb out.
func OpenPalmLandmarks() HandLandmarks {
	points := make([]Point3D, NumLandmarks)

	points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	points[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	points[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52}
	points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}

	points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	points[RingPIP] = Point3D{X: 0.43, Y: 0.55}
	points[RingDIP] = Point3D{X: 0.42, Y: 0.45}
	points[RingTip] = Point3D{X: 0.42, Y: 0.35}

	points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70}
	points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60}
	points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50}
	points[PinkyTip] = Point3D{X: 0.34, Y: 0.42}

	return HandLandmarks{Points: points, Handedness: "Right", Score: 0.95}
}

// PartialLandmarks returns a hand that reports only the first n landmarks of
// the open palm, as a detector does when part of the hand is out of frame.
func PartialLandmarks(n int) HandLandmarks {
	full := OpenPalmLandmarks()
	if n > len(full.Points) {
		n = len(full.Points)
	}
	full.Points = full.Points[:n]
	full.Score = 0.4
	return full
}
