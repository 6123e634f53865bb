package training

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPredictor struct {
	class int
}

func (p fixedPredictor) Predict(vector []float64) (int, []float64, error) {
	return p.class, nil, nil
}

type echoPredictor struct {
	answers []int
	next    int
}

func (p *echoPredictor) Predict(vector []float64) (int, []float64, error) {
	class := p.answers[p.next]
	p.next++
	return class, nil, nil
}

func TestEvaluatePerfect(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {0}}
	y := []int{0, 1, 2, 0}

	report, err := Evaluate(&echoPredictor{answers: y}, x, y)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TestRows)
	assert.Equal(t, 1.0, report.Accuracy)
	assert.Equal(t, 1.0, report.WeightedF1)
	assert.Equal(t, 2, report.PerClass["LOW"].Support)
	assert.Equal(t, 1.0, report.PerClass["HIGH"].F1)
}

func TestEvaluateDegenerate(t *testing.T) {
	// Always predicting LOW on labels {0,0,1,2}.
	x := [][]float64{{0}, {0}, {0}, {0}}
	y := []int{0, 0, 1, 2}

	report, err := Evaluate(fixedPredictor{class: 0}, x, y)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, report.Accuracy, 1e-12)

	low := report.PerClass["LOW"]
	assert.InDelta(t, 0.5, low.Precision, 1e-12)
	assert.InDelta(t, 1.0, low.Recall, 1e-12)
	assert.InDelta(t, 2.0/3.0, low.F1, 1e-12)
	assert.Equal(t, 2, low.Support)

	assert.Zero(t, report.PerClass["MEDIUM"].F1)
	assert.Zero(t, report.PerClass["HIGH"].F1)
	assert.InDelta(t, (2.0/3.0)*2.0/4.0, report.WeightedF1, 1e-12)
}

func TestEvaluateRejectsBadLabel(t *testing.T) {
	_, err := Evaluate(fixedPredictor{}, [][]float64{{0}}, []int{7})
	assert.Error(t, err)
}

func TestEvaluateLengthMismatch(t *testing.T) {
	_, err := Evaluate(fixedPredictor{}, [][]float64{{0}}, []int{0, 1})
	assert.Error(t, err)
}

func TestReportSave(t *testing.T) {
	report := Report{
		TestRows:   10,
		Accuracy:   0.9,
		WeightedF1: 0.88,
		PerClass:   map[string]ClassMetrics{"LOW": {Precision: 1, Recall: 0.8, F1: 8.0 / 9.0, Support: 5}},
	}

	path := filepath.Join(t.TempDir(), "reports", "metrics.json")
	require.NoError(t, report.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Report
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, report.TestRows, loaded.TestRows)
	assert.Equal(t, report.Accuracy, loaded.Accuracy)
	assert.Equal(t, report.PerClass["LOW"].Support, loaded.PerClass["LOW"].Support)
}
