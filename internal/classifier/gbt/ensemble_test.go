package gbt

import (
	"path/filepath"
	"testing"

	"github.com/retailops/quantclass/internal/classifier/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{
		Rounds:         20,
		MaxDepth:       3,
		LearningRate:   0.3,
		MinSamplesLeaf: 1,
		Lambda:         1.0,
	}
}

// Three well-separated blobs, one per class.
func separableData() ([][]float64, []int) {
	var x [][]float64
	var y []int
	for i := 0; i < 30; i++ {
		offset := float64(i%5) * 0.1
		x = append(x, []float64{0 + offset, 0 - offset})
		y = append(y, 0)
		x = append(x, []float64{10 + offset, 0 + offset})
		y = append(y, 1)
		x = append(x, []float64{0 - offset, 10 + offset})
		y = append(y, 2)
	}
	return x, y
}

func TestTrainLearnsSeparableClasses(t *testing.T) {
	x, y := separableData()
	model, err := Train(testConfig(), []string{"f0", "f1"}, x, y, zap.NewNop())
	require.NoError(t, err)

	correct := 0
	for i := range x {
		class, probs, err := model.Predict(x[i])
		require.NoError(t, err)
		require.Len(t, probs, domain.NumClasses)
		sum := 0.0
		for _, p := range probs {
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		if class == y[i] {
			correct++
		}
	}
	assert.Equal(t, len(x), correct, "separable data must be fit exactly")
}

func TestPredictDeterministic(t *testing.T) {
	x, y := separableData()
	model, err := Train(testConfig(), []string{"f0", "f1"}, x, y, nil)
	require.NoError(t, err)

	c1, p1, err := model.Predict([]float64{5, 5})
	require.NoError(t, err)
	c2, p2, err := model.Predict([]float64{5, 5})
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
	assert.Equal(t, p1, p2)
}

func TestPredictVectorWidth(t *testing.T) {
	x, y := separableData()
	model, err := Train(testConfig(), []string{"f0", "f1"}, x, y, nil)
	require.NoError(t, err)

	_, _, err = model.Predict([]float64{1, 2, 3})
	assert.ErrorIs(t, err, domain.ErrVectorWidth)
}

func TestTrainInputValidation(t *testing.T) {
	_, err := Train(testConfig(), []string{"f0"}, nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoTrainingData)

	_, err = Train(testConfig(), []string{"f0"}, [][]float64{{1, 2}}, []int{0}, nil)
	assert.ErrorIs(t, err, domain.ErrVectorWidth)

	_, err = Train(testConfig(), []string{"f0"}, [][]float64{{1}}, []int{5}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidLabel)

	_, err = Train(Config{}, []string{"f0"}, [][]float64{{1}}, []int{0}, nil)
	assert.Error(t, err)
}

func TestArtifactRoundTrip(t *testing.T) {
	x, y := separableData()
	model, err := Train(testConfig(), []string{"f0", "f1"}, x, y, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model_artifacts", "model.json")
	require.NoError(t, model.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.FeatureColumns, loaded.FeatureColumns)
	assert.Equal(t, []string{"LOW", "MEDIUM", "HIGH"}, loaded.ClassLabels)

	// Loaded model must predict identically.
	for i := range x {
		c1, p1, err := model.Predict(x[i])
		require.NoError(t, err)
		c2, p2, err := loaded.Predict(x[i])
		require.NoError(t, err)
		assert.Equal(t, c1, c2)
		assert.InDeltaSlice(t, p1, p2, 1e-12)
	}
}

func TestLoadRejectsMissingOrBroken(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLabelMapping(t *testing.T) {
	assert.Equal(t, "LOW", domain.Label(0))
	assert.Equal(t, "MEDIUM", domain.Label(1))
	assert.Equal(t, "HIGH", domain.Label(2))
	assert.Equal(t, "UNKNOWN", domain.Label(3))
	assert.Equal(t, "UNKNOWN", domain.Label(-1))
}
