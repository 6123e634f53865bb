// Package domain defines the classifier contract. The rest of the system
// treats the model as opaque: a fixed-width float vector in, a class index
// and probability distribution out.
package domain

import "errors"

// NumClasses is the number of sales-quantity classes.
const NumClasses = 3

// Classifier is the opaque trained model.
type Classifier interface {
	Predict(vector []float64) (class int, probs []float64, err error)
}

var (
	ErrModelUnavailable = errors.New("model_unavailable")
	ErrVectorWidth      = errors.New("vector_width_mismatch")
	ErrNoTrainingData   = errors.New("no_training_data")
	ErrInvalidLabel     = errors.New("invalid_class_label")
)

var labels = [NumClasses]string{"LOW", "MEDIUM", "HIGH"}

// Label maps a class index to its name. The mapping is fixed and must match
// the training label encoding exactly.
func Label(class int) string {
	if class < 0 || class >= NumClasses {
		return "UNKNOWN"
	}
	return labels[class]
}

// Labels returns the ordered class names.
func Labels() []string {
	return labels[:]
}
