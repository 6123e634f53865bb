// Package gbt is a gradient-boosted tree classifier with a multiclass
// softmax objective: one regression tree per class per boosting round.
// Callers outside the training driver only see the domain.Classifier
// interface.
package gbt

import (
	"fmt"
	"math"

	"github.com/retailops/quantclass/internal/classifier/domain"
	"go.uber.org/zap"
)

// Config holds the boosting hyperparameters. They ride along in the
// persisted artifact so a loaded model is self-describing.
type Config struct {
	Rounds         int     `json:"rounds"`
	MaxDepth       int     `json:"max_depth"`
	LearningRate   float64 `json:"learning_rate"`
	MinSamplesLeaf int     `json:"min_samples_leaf"`
	Lambda         float64 `json:"lambda"`
}

// DefaultConfig mirrors the hyperparameters the model has always been
// trained with.
func DefaultConfig() Config {
	return Config{
		Rounds:         100,
		MaxDepth:       6,
		LearningRate:   0.1,
		MinSamplesLeaf: 1,
		Lambda:         1.0,
	}
}

func (c Config) validate() error {
	if c.Rounds <= 0 || c.MaxDepth <= 0 || c.LearningRate <= 0 || c.MinSamplesLeaf <= 0 || c.Lambda < 0 {
		return fmt.Errorf("invalid gbt config: %+v", c)
	}
	return nil
}

// Ensemble is a trained boosted-tree model. It implements
// domain.Classifier.
type Ensemble struct {
	Config         Config   `json:"config"`
	FeatureColumns []string `json:"feature_columns"`
	ClassLabels    []string `json:"class_labels"`
	NumClasses     int      `json:"num_classes"`
	// Trees is indexed [round][class].
	Trees [][]tree `json:"trees"`
}

// Train fits the ensemble on assembled feature vectors and class labels.
func Train(cfg Config, columns []string, x [][]float64, y []int, log *zap.Logger) (*Ensemble, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, domain.ErrNoTrainingData
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vectors, %d labels", domain.ErrNoTrainingData, len(x), len(y))
	}
	for i, row := range x {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", domain.ErrVectorWidth, i, len(row), len(columns))
		}
	}
	for i, label := range y {
		if label < 0 || label >= domain.NumClasses {
			return nil, fmt.Errorf("%w: row %d has class %d", domain.ErrInvalidLabel, i, label)
		}
	}

	n := len(x)
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, domain.NumClasses)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	builder := &treeBuilder{
		x:         x,
		grad:      grad,
		hess:      hess,
		maxDepth:  cfg.MaxDepth,
		minLeaf:   cfg.MinSamplesLeaf,
		lambda:    cfg.Lambda,
		leafScale: cfg.LearningRate,
	}

	trees := make([][]tree, cfg.Rounds)
	probs := make([]float64, domain.NumClasses)
	for round := 0; round < cfg.Rounds; round++ {
		trees[round] = make([]tree, domain.NumClasses)
		for class := 0; class < domain.NumClasses; class++ {
			for i := 0; i < n; i++ {
				softmaxInto(scores[i], probs)
				p := probs[class]
				target := 0.0
				if y[i] == class {
					target = 1.0
				}
				grad[i] = p - target
				hess[i] = p * (1 - p)
			}
			t := builder.build(indices)
			trees[round][class] = t
			for i := 0; i < n; i++ {
				scores[i][class] += t.predict(x[i])
			}
		}
	}

	if log != nil {
		log.Info("gbt training complete",
			zap.Int("rows", n),
			zap.Int("rounds", cfg.Rounds),
			zap.Int("features", len(columns)),
		)
	}

	return &Ensemble{
		Config:         cfg,
		FeatureColumns: append([]string(nil), columns...),
		ClassLabels:    domain.Labels(),
		NumClasses:     domain.NumClasses,
		Trees:          trees,
	}, nil
}

// Predict returns the most probable class and the softmax distribution for
// one feature vector.
func (e *Ensemble) Predict(vector []float64) (int, []float64, error) {
	if len(vector) != len(e.FeatureColumns) {
		return 0, nil, fmt.Errorf("%w: got %d values, model expects %d",
			domain.ErrVectorWidth, len(vector), len(e.FeatureColumns))
	}

	scores := make([]float64, e.NumClasses)
	for _, round := range e.Trees {
		for class, t := range round {
			scores[class] += t.predict(vector)
		}
	}

	probs := make([]float64, e.NumClasses)
	softmaxInto(scores, probs)

	best := 0
	for c := 1; c < e.NumClasses; c++ {
		if probs[c] > probs[best] {
			best = c
		}
	}
	return best, probs, nil
}

func softmaxInto(scores, out []float64) {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	sum := 0.0
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
}
