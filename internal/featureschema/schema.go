// Package featureschema is the single source of truth for the feature
// contract shared by the training pipeline and the serving path: bucket
// counts, feature column names, and their exact order. Training persists
// this schema as a manifest; serving refuses to start predicting until the
// loaded manifest matches it column-for-column.
package featureschema

import (
	"errors"
	"fmt"
	"strings"
)

// BucketConfig fixes the bucket count for every hashed categorical feature.
// These numbers are part of the trained-model contract: changing any of them
// silently changes feature semantics and requires retraining.
type BucketConfig struct {
	Item       int
	Branch     int
	Invoice    int
	ItemBranch int
	ItemMonth  int
}

// DefaultBuckets returns the bucket configuration every caller must use.
func DefaultBuckets() BucketConfig {
	return BucketConfig{
		Item:       2000,
		Branch:     200,
		Invoice:    5000,
		ItemBranch: 5000,
		ItemMonth:  5000,
	}
}

// Transaction is a single raw retail transaction record. Fields beyond these
// (branch name, item name) are descriptive and ignored by the feature
// pipeline.
type Transaction struct {
	Date          string
	BranchID      string
	InvoiceNumber string
	ItemCode      string
	QuantitySold  float64
}

var (
	ErrMissingField   = errors.New("missing_required_field")
	ErrSchemaMismatch = errors.New("feature_schema_mismatch")
)

// Validate checks that every field the feature pipeline depends on is
// present. Missing fields are schema errors, never silently defaulted.
func (t Transaction) Validate() error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"Date", t.Date},
		{"BranchID", t.BranchID},
		{"InvoiceNumber", t.InvoiceNumber},
		{"ItemCode", t.ItemCode},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}

// Lags and RollingWindows define the time-series feature configuration.
// Together they produce the 13 time-series columns.
var (
	Lags           = []int{1, 2, 3, 7, 14}
	RollingWindows = []int{3, 7, 14, 30}
)

// TimeSeriesColumns returns the 13 lag/rolling column names in contract order.
func TimeSeriesColumns() []string {
	cols := make([]string, 0, len(Lags)+2*len(RollingWindows))
	for _, lag := range Lags {
		cols = append(cols, fmt.Sprintf("qty_lag_%d", lag))
	}
	for _, w := range RollingWindows {
		cols = append(cols, fmt.Sprintf("qty_roll_mean_%d", w))
		cols = append(cols, fmt.Sprintf("qty_roll_std_%d", w))
	}
	return cols
}

// Columns returns the full ordered feature column list the classifier
// expects. Order is load-bearing; the assembler emits vectors in exactly
// this order and the manifest persists it.
func Columns() []string {
	cols := []string{
		"year", "month", "day", "dayofweek", "is_weekend",
		"h_item", "h_branch", "h_invoice", "h_item_branch", "h_item_month",
	}
	return append(cols, TimeSeriesColumns()...)
}

// EqualColumns reports whether two column lists agree in names and order.
func EqualColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
