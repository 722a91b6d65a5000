package classifier

import (
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestArgmax(t *testing.T) {
	tests := []struct {
		name      string
		probs     []float32
		wantIndex int
		wantP     float32
	}{
		{"single peak", []float32{0.1, 0.2, 0.6, 0.1}, 2, 0.6},
		{"first element", []float32{0.9, 0.05, 0.05}, 0, 0.9},
		{"tie picks lowest index", []float32{0.4, 0.4, 0.2}, 0, 0.4},
		{"negative logits", []float32{-3, -1, -2}, 1, -1},
		{"empty", nil, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, p := Argmax(tt.probs)
			if i != tt.wantIndex || p != tt.wantP {
				t.Errorf("Argmax() = (%d, %f), want (%d, %f)", i, p, tt.wantIndex, tt.wantP)
			}
		})
	}
}

func TestMockClassifier(t *testing.T) {
	t.Run("deterministic prediction", func(t *testing.T) {
		m := NewMockClassifier(42)
		m.SetClass(3, 5)
		features := make([]float32, 42)

		first, err := m.Predict(features)
		if err != nil {
			t.Fatalf("Predict() error = %v", err)
		}
		second, _ := m.Predict(features)

		i1, _ := Argmax(first)
		i2, _ := Argmax(second)
		if i1 != 3 || i2 != 3 {
			t.Errorf("argmax = %d then %d, want 3 both times", i1, i2)
		}
		if m.Calls() != 2 {
			t.Errorf("Calls() = %d, want 2", m.Calls())
		}
	})

	t.Run("wrong length is a shape error", func(t *testing.T) {
		m := NewMockClassifier(42)
		m.SetClass(0, 2)

		_, err := m.Predict(make([]float32, 40))
		if !errors.Is(err, ErrShape) {
			t.Errorf("expected ErrShape, got %v", err)
		}
	})

	t.Run("scripted error", func(t *testing.T) {
		m := NewMockClassifier(42)
		m.SetError(ErrShape)

		if _, err := m.Predict(make([]float32, 42)); !errors.Is(err, ErrShape) {
			t.Errorf("expected ErrShape, got %v", err)
		}
	})

	t.Run("implements Classifier interface", func(t *testing.T) {
		var _ Classifier = (*MockClassifier)(nil)
		var _ Classifier = (*ONNXClassifier)(nil)
	})
}

func TestFloat32Bytes(t *testing.T) {
	values := []float32{0, 1.5, -2.25}
	buf := float32Bytes(values)

	if len(buf) != 12 {
		t.Fatalf("len = %d, want 12", len(buf))
	}
	for i, v := range values {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
		if got != v {
			t.Errorf("value %d = %f, want %f", i, got, v)
		}
	}
}

func TestNewONNX_Errors(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		_, err := NewONNX(ONNXConfig{ModelPath: filepath.Join(t.TempDir(), "missing.onnx"), InputSize: 42})
		if err == nil {
			t.Error("expected error for missing model file")
		}
	})

	t.Run("invalid input size", func(t *testing.T) {
		if _, err := NewONNX(ONNXConfig{ModelPath: "model.onnx"}); err == nil {
			t.Error("expected error for zero input size")
		}
	})
}

func TestONNXClassifier_RejectsShapeBeforeInference(t *testing.T) {
	// No network is needed: shape validation happens before the forward pass.
	c := &ONNXClassifier{config: ONNXConfig{InputSize: 42}}

	tests := []struct {
		name     string
		features []float32
	}{
		{"too short", make([]float32, 21)},
		{"too long", make([]float32, 84)},
		{"nan value", func() []float32 {
			f := make([]float32, 42)
			f[7] = float32(math.NaN())
			return f
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Predict(tt.features); !errors.Is(err, ErrShape) {
				t.Errorf("expected ErrShape, got %v", err)
			}
		})
	}
}
