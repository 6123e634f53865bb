// Package training runs the offline pipeline: load labeled transactions,
// derive the time-series features, fit the classifier, and persist the
// serving artifacts.
package training

import (
	"context"
	"fmt"

	"github.com/retailops/quantclass/internal/classifier/gbt"
	"github.com/retailops/quantclass/internal/config"
	datasetdomain "github.com/retailops/quantclass/internal/dataset/domain"
	"github.com/retailops/quantclass/internal/featureschema"
	"github.com/retailops/quantclass/internal/features"
	"github.com/retailops/quantclass/internal/observability/metrics"
	"github.com/retailops/quantclass/internal/timeseries"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg      config.Config
	Training config.TrainingConfig
	Log      *zap.Logger
	Loader   datasetdomain.Loader
	Importer datasetdomain.Importer `optional:"true"`
	Metrics  *metrics.Metrics       `optional:"true"`
}

// Driver owns one end-to-end training run.
type Driver struct {
	cfg      config.Config
	training config.TrainingConfig
	log      *zap.Logger
	loader   datasetdomain.Loader
	importer datasetdomain.Importer
	metrics  *metrics.Metrics
}

func NewDriver(p Params) *Driver {
	return &Driver{
		cfg:      p.Cfg,
		training: p.Training,
		log:      p.Log.Named("training.driver"),
		loader:   p.Loader,
		importer: p.Importer,
		metrics:  p.Metrics,
	}
}

// Result summarizes a completed run.
type Result struct {
	TrainRows int
	TestRows  int
	Report    Report
}

// Run executes the pipeline and writes the manifest, the model artifact, and
// the evaluation report to their configured paths.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	if d.cfg.ImportCSV && d.importer != nil {
		for _, split := range []string{datasetdomain.SplitTrain, datasetdomain.SplitTest} {
			if err := d.importer.ImportSplit(ctx, split); err != nil {
				return nil, fmt.Errorf("import %s split: %w", split, err)
			}
		}
	}

	train, err := d.loader.LoadSplit(ctx, datasetdomain.SplitTrain)
	if err != nil {
		return nil, fmt.Errorf("load train split: %w", err)
	}
	test, err := d.loader.LoadSplit(ctx, datasetdomain.SplitTest)
	if err != nil {
		return nil, fmt.Errorf("load test split: %w", err)
	}
	d.metrics.RecordTrainingRows(ctx, "loaded", len(train)+len(test))

	manifest := featureschema.DefaultManifest()
	assembler, err := features.NewAssembler(manifest)
	if err != nil {
		return nil, err
	}

	// Time-series history spans both splits so early test rows see the
	// tail of the training history, mirroring how history would exist in
	// production. The fitted trees only ever see train rows.
	combined := make([]datasetdomain.LabeledTransaction, 0, len(train)+len(test))
	combined = append(combined, train...)
	combined = append(combined, test...)

	xTrain, yTrain, xTest, yTest, err := d.buildMatrices(combined, len(train), assembler)
	if err != nil {
		return nil, err
	}
	d.metrics.RecordTrainingRows(ctx, "featurized", len(xTrain)+len(xTest))
	d.log.Info("feature matrices built",
		zap.Int("train_rows", len(xTrain)),
		zap.Int("test_rows", len(xTest)),
		zap.Int("columns", len(manifest.FeatureColumns)),
	)

	model, err := gbt.Train(gbt.Config{
		Rounds:         d.training.Rounds,
		MaxDepth:       d.training.MaxDepth,
		LearningRate:   d.training.LearningRate,
		MinSamplesLeaf: d.training.MinSamplesLeaf,
		Lambda:         d.training.Lambda,
	}, manifest.FeatureColumns, xTrain, yTrain, d.log)
	if err != nil {
		return nil, fmt.Errorf("fit classifier: %w", err)
	}

	report, err := Evaluate(model, xTest, yTest)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	trainReport, err := Evaluate(model, xTrain, yTrain)
	if err != nil {
		return nil, fmt.Errorf("evaluate train split: %w", err)
	}
	report.TrainWeightedF1 = trainReport.WeightedF1
	d.log.Info("evaluation finished",
		zap.Int("test_rows", len(xTest)),
		zap.Float64("accuracy", report.Accuracy),
		zap.Float64("weighted_f1", report.WeightedF1),
	)

	if err := manifest.Save(d.cfg.ManifestPath); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	if err := model.Save(d.cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("write model: %w", err)
	}
	if err := report.Save(d.cfg.MetricsReportPath); err != nil {
		return nil, fmt.Errorf("write metrics report: %w", err)
	}
	d.log.Info("artifacts written",
		zap.String("manifest", d.cfg.ManifestPath),
		zap.String("model", d.cfg.ModelPath),
		zap.String("report", d.cfg.MetricsReportPath),
	)

	return &Result{
		TrainRows: len(xTrain),
		TestRows:  len(xTest),
		Report:    report,
	}, nil
}

// buildMatrices derives the time-series features over the combined rows and
// assembles the surviving ones into feature matrices, re-split by origin.
func (d *Driver) buildMatrices(
	combined []datasetdomain.LabeledTransaction,
	trainLen int,
	assembler *features.Assembler,
) (xTrain [][]float64, yTrain []int, xTest [][]float64, yTest []int, err error) {
	obs := make([]timeseries.Observation, 0, len(combined))
	for i, row := range combined {
		parts, err := features.ExtractDateParts(row.Date)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("row %d: %w", i, err)
		}
		obs = append(obs, timeseries.Observation{
			Group:    assembler.ItemBranchBucket(row.ItemCode, row.BranchID),
			Year:     parts.Year,
			Month:    parts.Month,
			Day:      parts.Day,
			Quantity: row.QuantitySold,
			Index:    i,
		})
	}

	generator := timeseries.NewGenerator()
	for _, rowFeatures := range generator.Generate(obs) {
		row := combined[rowFeatures.Index]
		vector, err := assembler.Assemble(row.Transaction, rowFeatures.Values)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("row %d: %w", rowFeatures.Index, err)
		}
		if rowFeatures.Index < trainLen {
			xTrain = append(xTrain, vector)
			yTrain = append(yTrain, row.Class)
		} else {
			xTest = append(xTest, vector)
			yTest = append(yTest, row.Class)
		}
	}

	if len(xTrain) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("%w: no training rows survive the history requirement", datasetdomain.ErrEmptyDataset)
	}
	return xTrain, yTrain, xTest, yTest, nil
}
