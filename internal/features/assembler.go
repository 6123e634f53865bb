package features

import (
	"fmt"
	"strconv"

	"github.com/retailops/quantclass/internal/featureschema"
)

// Assembler builds the ordered numeric feature vector for one transaction.
// Construction fails if the supplied manifest has drifted from the
// compiled-in schema, so a vector can never be produced against the wrong
// column order.
type Assembler struct {
	buckets featureschema.BucketConfig
	columns []string
}

// NewAssembler validates the manifest against the compiled-in schema and
// returns an assembler bound to it.
func NewAssembler(m *featureschema.Manifest) (*Assembler, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil manifest", featureschema.ErrSchemaMismatch)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Assembler{
		buckets: featureschema.DefaultBuckets(),
		columns: append([]string(nil), m.FeatureColumns...),
	}, nil
}

// Columns returns the output column order, which equals the manifest.
func (a *Assembler) Columns() []string {
	return append([]string(nil), a.columns...)
}

// ItemBranchBucket hashes the item x branch cross-feature. The offline
// generator groups histories by this bucket, not by the raw identifiers,
// so grouping matches what the model sees.
func (a *Assembler) ItemBranchBucket(itemCode, branchID string) int {
	return Bucket(itemCode+branchID, a.buckets.ItemBranch)
}

// Assemble maps a transaction to the feature vector in manifest order.
// ts carries the 13 time-series values keyed by column name when history is
// available (training); a nil ts zero-fills every time-series field, which
// is the defined serving-time substitute for "no history".
func (a *Assembler) Assemble(tx featureschema.Transaction, ts map[string]float64) ([]float64, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	date, err := ExtractDateParts(tx.Date)
	if err != nil {
		return nil, err
	}

	// The month cross-feature concatenates the unpadded decimal month,
	// so "ITEM-5" in January hashes "ITEM-51", not "ITEM-501".
	values := map[string]float64{
		"year":          float64(date.Year),
		"month":         float64(date.Month),
		"day":           float64(date.Day),
		"dayofweek":     float64(date.DayOfWeek),
		"is_weekend":    float64(date.IsWeekend),
		"h_item":        float64(Bucket(tx.ItemCode, a.buckets.Item)),
		"h_branch":      float64(Bucket(tx.BranchID, a.buckets.Branch)),
		"h_invoice":     float64(Bucket(tx.InvoiceNumber, a.buckets.Invoice)),
		"h_item_branch": float64(a.ItemBranchBucket(tx.ItemCode, tx.BranchID)),
		"h_item_month":  float64(Bucket(tx.ItemCode+strconv.Itoa(date.Month), a.buckets.ItemMonth)),
	}

	for _, col := range featureschema.TimeSeriesColumns() {
		if ts == nil {
			values[col] = 0.0
			continue
		}
		v, ok := ts[col]
		if !ok {
			return nil, fmt.Errorf("%w: time-series value %s missing", featureschema.ErrSchemaMismatch, col)
		}
		values[col] = v
	}

	vector := make([]float64, len(a.columns))
	for i, col := range a.columns {
		v, ok := values[col]
		if !ok {
			return nil, fmt.Errorf("%w: assembler cannot produce column %s", featureschema.ErrSchemaMismatch, col)
		}
		vector[i] = v
	}
	return vector, nil
}
