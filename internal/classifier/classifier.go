// Package classifier runs the pre-trained sign classifier on feature vectors.
package classifier

import "errors"

// ErrShape is returned when a feature vector does not match the model input shape.
var ErrShape = errors.New("feature vector does not match model input shape")

// Classifier maps a feature vector to a probability distribution over classes.
type Classifier interface {
	// Predict returns one probability per class.
	Predict(features []float32) ([]float32, error)

	// Close releases the model.
	Close() error
}

// Argmax returns the index and value of the largest probability.
// Ties resolve to the lowest index. An empty distribution yields -1.
func Argmax(probs []float32) (int, float32) {
	best := -1
	var bestP float32
	for i, p := range probs {
		if best == -1 || p > bestP {
			best, bestP = i, p
		}
	}
	return best, bestP
}
