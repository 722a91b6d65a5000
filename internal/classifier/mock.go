package classifier

import (
	"fmt"
	"sync"
)

// MockClassifier returns a fixed distribution. It validates input length the
// same way the ONNX classifier does.
type MockClassifier struct {
	mu        sync.Mutex
	inputSize int
	probs     []float32
	err       error
	calls     int
}

// NewMockClassifier creates a mock that expects inputSize features.
func NewMockClassifier(inputSize int) *MockClassifier {
	return &MockClassifier{inputSize: inputSize}
}

// SetDistribution sets the distribution returned by Predict.
func (m *MockClassifier) SetDistribution(probs []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probs = probs
}

// SetClass makes Predict return a one-hot distribution over n classes.
func (m *MockClassifier) SetClass(index, n int) {
	probs := make([]float32, n)
	probs[index] = 1
	m.SetDistribution(probs)
}

// SetError sets the error returned by Predict.
func (m *MockClassifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Predict has been called.
func (m *MockClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Predict returns the configured distribution or error.
func (m *MockClassifier) Predict(features []float32) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(features) != m.inputSize {
		return nil, fmt.Errorf("%w: got %d values, want (1, %d)", ErrShape, len(features), m.inputSize)
	}

	out := make([]float32, len(m.probs))
	copy(out, m.probs)
	return out, nil
}

// Close is a no-op.
func (m *MockClassifier) Close() error {
	return nil
}
