package classifier

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// ONNXConfig holds ONNX classifier configuration.
type ONNXConfig struct {
	ModelPath string
	// InputSize is the length of the (1, InputSize) input tensor.
	InputSize int
	// NumClasses, when non-zero, is checked against the output width.
	NumClasses int
}

// ONNXClassifier runs a dense classifier exported to ONNX through OpenCV's DNN module.
type ONNXClassifier struct {
	net    gocv.Net
	config ONNXConfig
	mu     sync.Mutex
}

// NewONNX loads the model once. The returned classifier is safe for concurrent use.
func NewONNX(cfg ONNXConfig) (*ONNXClassifier, error) {
	if cfg.InputSize <= 0 {
		return nil, fmt.Errorf("invalid input size %d", cfg.InputSize)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &ONNXClassifier{net: net, config: cfg}, nil
}

// Predict runs one forward pass on a (1, InputSize) tensor.
func (c *ONNXClassifier) Predict(features []float32) ([]float32, error) {
	if len(features) != c.config.InputSize {
		return nil, fmt.Errorf("%w: got %d values, want (1, %d)", ErrShape, len(features), c.config.InputSize)
	}
	for i, f := range features {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil, fmt.Errorf("%w: feature %d is %v", ErrShape, i, f)
		}
	}

	input, err := gocv.NewMatFromBytes(1, len(features), gocv.MatTypeCV32F, float32Bytes(features))
	if err != nil {
		return nil, fmt.Errorf("build input tensor: %w", err)
	}
	defer input.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.net.SetInput(input, "")
	output := c.net.Forward("")
	defer output.Close()

	if output.Empty() {
		return nil, fmt.Errorf("model produced no output")
	}

	probs, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	if c.config.NumClasses > 0 && len(probs) != c.config.NumClasses {
		return nil, fmt.Errorf("%w: model has %d outputs, want %d classes", ErrShape, len(probs), c.config.NumClasses)
	}

	// The output Mat owns probs; copy before it is closed.
	out := make([]float32, len(probs))
	copy(out, probs)
	return out, nil
}

// Close releases the network.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}

func float32Bytes(values []float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}
