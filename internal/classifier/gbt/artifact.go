package gbt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retailops/quantclass/internal/classifier/domain"
)

var _ domain.Classifier = (*Ensemble)(nil)

// Save persists the trained ensemble as a JSON artifact.
func (e *Ensemble) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// Load reads a persisted ensemble and checks its internal consistency.
// Callers are expected to additionally verify FeatureColumns against the
// feature manifest before serving predictions.
func Load(path string) (*Ensemble, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var e Ensemble
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if e.NumClasses != domain.NumClasses {
		return nil, fmt.Errorf("model has %d classes, expected %d", e.NumClasses, domain.NumClasses)
	}
	if len(e.FeatureColumns) == 0 || len(e.Trees) == 0 {
		return nil, fmt.Errorf("model artifact %s is incomplete", path)
	}
	for _, round := range e.Trees {
		if len(round) != e.NumClasses {
			return nil, fmt.Errorf("model artifact %s has a round with %d trees, expected %d", path, len(round), e.NumClasses)
		}
	}
	return &e, nil
}
