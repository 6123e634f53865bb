package training

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/retailops/quantclass/internal/classifier/gbt"
	"github.com/retailops/quantclass/internal/config"
	datasetdomain "github.com/retailops/quantclass/internal/dataset/domain"
	datasetservice "github.com/retailops/quantclass/internal/dataset/service"
	"github.com/retailops/quantclass/internal/featureschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// writeSyntheticSplits builds a single item x branch group whose class is
// fully determined by the previous day's quantity, so the classifier can fit
// it exactly once the lag features exist.
func writeSyntheticSplits(t *testing.T, dir string, trainRows, testRows int) (string, string) {
	t.Helper()

	quantities := []float64{2, 11, 31}
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	row := func(i int) string {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		class := i % 3
		return fmt.Sprintf("%s,B1,INV-%04d,ITEM-1,%g,%d", date, i, quantities[class], class)
	}

	header := "Date,BranchID,InvoiceNumber,ItemCode,QuantitySold,y_class"
	var train, test strings.Builder
	train.WriteString(header + "\n")
	test.WriteString(header + "\n")
	for i := 0; i < trainRows; i++ {
		train.WriteString(row(i) + "\n")
	}
	for i := trainRows; i < trainRows+testRows; i++ {
		test.WriteString(row(i) + "\n")
	}

	trainPath := filepath.Join(dir, "train.csv")
	testPath := filepath.Join(dir, "test.csv")
	require.NoError(t, os.WriteFile(trainPath, []byte(train.String()), 0o644))
	require.NoError(t, os.WriteFile(testPath, []byte(test.String()), 0o644))
	return trainPath, testPath
}

func newTestDriver(t *testing.T, cfg config.Config) *Driver {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := datasetservice.NewService(datasetservice.Params{
		Cfg:   cfg,
		Log:   zap.NewNop(),
		GenID: node,
	})

	return NewDriver(Params{
		Cfg: cfg,
		Training: config.TrainingConfig{
			Rounds:         15,
			MaxDepth:       3,
			LearningRate:   0.3,
			MinSamplesLeaf: 1,
			Lambda:         1.0,
		},
		Log:    zap.NewNop(),
		Loader: svc,
	})
}

func TestDriverRun(t *testing.T) {
	dir := t.TempDir()
	trainPath, testPath := writeSyntheticSplits(t, dir, 90, 30)

	cfg := config.Config{
		DatasetSource:     "csv",
		TrainCSVPath:      trainPath,
		TestCSVPath:       testPath,
		ManifestPath:      filepath.Join(dir, "configs", "model_features.json"),
		ModelPath:         filepath.Join(dir, "artifacts", "model.json"),
		MetricsReportPath: filepath.Join(dir, "artifacts", "metrics.json"),
	}

	result, err := newTestDriver(t, cfg).Run(context.Background())
	require.NoError(t, err)

	// The first 30 rows of the group lack full history and are dropped.
	assert.Equal(t, 60, result.TrainRows)
	assert.Equal(t, 30, result.TestRows)
	assert.GreaterOrEqual(t, result.Report.Accuracy, 0.9)
	assert.GreaterOrEqual(t, result.Report.TrainWeightedF1, 0.9)

	manifest, err := featureschema.LoadManifest(cfg.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, featureschema.Columns(), manifest.FeatureColumns)

	model, err := gbt.Load(cfg.ModelPath)
	require.NoError(t, err)
	assert.Equal(t, manifest.FeatureColumns, model.FeatureColumns)

	_, err = os.Stat(cfg.MetricsReportPath)
	require.NoError(t, err)
}

func TestDriverRunInsufficientHistory(t *testing.T) {
	dir := t.TempDir()
	trainPath, testPath := writeSyntheticSplits(t, dir, 20, 5)

	cfg := config.Config{
		DatasetSource:     "csv",
		TrainCSVPath:      trainPath,
		TestCSVPath:       testPath,
		ManifestPath:      filepath.Join(dir, "configs", "model_features.json"),
		ModelPath:         filepath.Join(dir, "artifacts", "model.json"),
		MetricsReportPath: filepath.Join(dir, "artifacts", "metrics.json"),
	}

	_, err := newTestDriver(t, cfg).Run(context.Background())
	assert.ErrorIs(t, err, datasetdomain.ErrEmptyDataset)
}

func TestDriverRunBadDate(t *testing.T) {
	dir := t.TempDir()
	header := "Date,BranchID,InvoiceNumber,ItemCode,QuantitySold,y_class"
	bad := header + "\nnot-a-date,B1,INV-1,ITEM-1,5,0\n"
	trainPath := filepath.Join(dir, "train.csv")
	require.NoError(t, os.WriteFile(trainPath, []byte(bad), 0o644))

	cfg := config.Config{
		DatasetSource: "csv",
		TrainCSVPath:  trainPath,
		TestCSVPath:   trainPath,
	}

	_, err := newTestDriver(t, cfg).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unparseable_date")
}
