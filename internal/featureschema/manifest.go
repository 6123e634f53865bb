package featureschema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Manifest is the persisted feature-column contract. Training writes it once
// per run; serving loads it once at process start and must refuse to predict
// if it cannot be loaded or does not match the compiled-in schema.
type Manifest struct {
	FeatureColumns []string `json:"feature_columns"`
}

// DefaultManifest builds a manifest from the compiled-in column list.
func DefaultManifest() *Manifest {
	return &Manifest{FeatureColumns: Columns()}
}

// Validate fails if the manifest has drifted from the compiled-in schema.
func (m *Manifest) Validate() error {
	expected := Columns()
	if !EqualColumns(m.FeatureColumns, expected) {
		return fmt.Errorf("%w: manifest has %d columns, assembler expects %d (%v vs %v)",
			ErrSchemaMismatch, len(m.FeatureColumns), len(expected), m.FeatureColumns, expected)
	}
	return nil
}

// Save writes the manifest as JSON, creating parent directories as needed.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads and validates a persisted manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
