package training

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	classifierdomain "github.com/retailops/quantclass/internal/classifier/domain"
)

// ClassMetrics holds per-class evaluation figures.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is the evaluation summary persisted next to the model artifact.
// Accuracy and the per-class figures come from the held-out split;
// TrainWeightedF1 is measured on the training split to expose overfit.
type Report struct {
	TestRows        int                     `json:"test_rows"`
	Accuracy        float64                 `json:"accuracy"`
	WeightedF1      float64                 `json:"weighted_f1"`
	TrainWeightedF1 float64                 `json:"train_weighted_f1"`
	PerClass        map[string]ClassMetrics `json:"per_class"`
}

type predictor interface {
	Predict(vector []float64) (int, []float64, error)
}

// Evaluate scores the model on held-out rows. F1 is support-weighted across
// classes, matching the usual multiclass summary.
func Evaluate(model predictor, x [][]float64, y []int) (Report, error) {
	report := Report{
		TestRows: len(x),
		PerClass: make(map[string]ClassMetrics, classifierdomain.NumClasses),
	}
	if len(x) != len(y) {
		return report, fmt.Errorf("evaluation rows and labels differ: %d vs %d", len(x), len(y))
	}

	var truePos, falsePos, falseNeg [classifierdomain.NumClasses]int
	correct := 0
	for i, vector := range x {
		predicted, _, err := model.Predict(vector)
		if err != nil {
			return report, err
		}
		actual := y[i]
		if actual < 0 || actual >= classifierdomain.NumClasses {
			return report, fmt.Errorf("%w: %d", classifierdomain.ErrInvalidLabel, actual)
		}
		if predicted == actual {
			correct++
			truePos[actual]++
		} else {
			falsePos[predicted]++
			falseNeg[actual]++
		}
	}

	if len(x) > 0 {
		report.Accuracy = float64(correct) / float64(len(x))
	}

	weighted := 0.0
	for class := 0; class < classifierdomain.NumClasses; class++ {
		support := truePos[class] + falseNeg[class]
		precision := ratio(truePos[class], truePos[class]+falsePos[class])
		recall := ratio(truePos[class], support)
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		report.PerClass[classifierdomain.Label(class)] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support,
		}
		weighted += f1 * float64(support)
	}
	if len(x) > 0 {
		report.WeightedF1 = weighted / float64(len(x))
	}
	return report, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Save writes the report as indented JSON.
func (r Report) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
