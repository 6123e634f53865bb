// Package classifier loads the trained model and the feature manifest, and
// serves predictions through them.
package classifier

import (
	"context"

	"github.com/retailops/quantclass/internal/classifier/domain"
	"github.com/retailops/quantclass/internal/classifier/gbt"
	"github.com/retailops/quantclass/internal/config"
	"github.com/retailops/quantclass/internal/featureschema"
	"github.com/retailops/quantclass/internal/features"
	"github.com/retailops/quantclass/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Loader holds the serving artifacts. A load failure leaves the process up
// but degraded: /health reports inactive and predictions fail fast until the
// artifacts are fixed and the process restarted.
type Loader struct {
	manifest  *featureschema.Manifest
	assembler *features.Assembler
	model     *gbt.Ensemble
	err       error
}

// LoaderParams collects the loader dependencies.
type LoaderParams struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

// NewLoader loads the manifest and the model artifact. Errors are stored
// rather than returned so the application can start degraded.
func NewLoader(p LoaderParams) *Loader {
	loader := &Loader{}
	loader.load(p)

	p.Metrics.RecordModelLoad(context.Background(), loader.err == nil)
	if loader.err != nil {
		p.Log.Warn("model unavailable, serving degraded",
			zap.String("model_path", p.Cfg.ModelPath),
			zap.String("manifest_path", p.Cfg.ManifestPath),
			zap.Error(loader.err),
		)
		return loader
	}

	p.Log.Info("model loaded",
		zap.String("model_path", p.Cfg.ModelPath),
		zap.Int("features", len(loader.manifest.FeatureColumns)),
		zap.Strings("labels", loader.model.ClassLabels),
	)
	return loader
}

func (l *Loader) load(p LoaderParams) {
	manifest, err := featureschema.LoadManifest(p.Cfg.ManifestPath)
	if err != nil {
		l.err = err
		return
	}

	assembler, err := features.NewAssembler(manifest)
	if err != nil {
		l.err = err
		return
	}

	model, err := gbt.Load(p.Cfg.ModelPath)
	if err != nil {
		l.err = err
		return
	}

	// The model must have been trained against the manifest it is served
	// with, otherwise vector positions silently shift.
	if !featureschema.EqualColumns(model.FeatureColumns, manifest.FeatureColumns) {
		l.err = featureschema.ErrSchemaMismatch
		return
	}

	l.manifest = manifest
	l.assembler = assembler
	l.model = model
}

// Ready reports whether the serving artifacts loaded successfully.
func (l *Loader) Ready() bool {
	return l != nil && l.err == nil
}

// Predict classifies an assembled feature vector.
func (l *Loader) Predict(vector []float64) (int, []float64, error) {
	if !l.Ready() {
		return 0, nil, domain.ErrModelUnavailable
	}
	return l.model.Predict(vector)
}

// Assembler returns the feature assembler bound to the served manifest.
func (l *Loader) Assembler() (*features.Assembler, error) {
	if !l.Ready() {
		return nil, domain.ErrModelUnavailable
	}
	return l.assembler, nil
}
