package features

import (
	"testing"

	"github.com/retailops/quantclass/internal/featureschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransaction() featureschema.Transaction {
	return featureschema.Transaction{
		Date:          "2023-01-01",
		BranchID:      "B001",
		InvoiceNumber: "INV-1001",
		ItemCode:      "ITEM-500",
		QuantitySold:  1.0,
	}
}

func TestAssembleServingVector(t *testing.T) {
	asm, err := NewAssembler(featureschema.DefaultManifest())
	require.NoError(t, err)

	vec, err := asm.Assemble(sampleTransaction(), nil)
	require.NoError(t, err)
	require.Len(t, vec, len(featureschema.Columns()))

	byName := map[string]float64{}
	for i, col := range asm.Columns() {
		byName[col] = vec[i]
	}

	assert.Equal(t, 2023.0, byName["year"])
	assert.Equal(t, 1.0, byName["month"])
	assert.Equal(t, 1.0, byName["day"])
	assert.Equal(t, 6.0, byName["dayofweek"]) // Sunday under Monday=0
	assert.Equal(t, 1.0, byName["is_weekend"])

	// MD5 buckets are fixed for all time; these are the contract values.
	assert.Equal(t, 922.0, byName["h_item"])
	assert.Equal(t, 154.0, byName["h_branch"])
	assert.Equal(t, 3294.0, byName["h_invoice"])
	assert.Equal(t, 4473.0, byName["h_item_branch"])
	assert.Equal(t, 1970.0, byName["h_item_month"])

	// Without history every time-series field is exactly zero.
	for _, col := range featureschema.TimeSeriesColumns() {
		assert.Zero(t, byName[col], col)
	}
}

func TestAssembleFillsTimeSeriesValues(t *testing.T) {
	asm, err := NewAssembler(featureschema.DefaultManifest())
	require.NoError(t, err)

	ts := map[string]float64{}
	for i, col := range featureschema.TimeSeriesColumns() {
		ts[col] = float64(i + 1)
	}

	vec, err := asm.Assemble(sampleTransaction(), ts)
	require.NoError(t, err)

	cols := asm.Columns()
	for i, col := range cols {
		if want, ok := ts[col]; ok {
			assert.Equal(t, want, vec[i], col)
		}
	}
}

func TestAssembleIncompleteTimeSeries(t *testing.T) {
	asm, err := NewAssembler(featureschema.DefaultManifest())
	require.NoError(t, err)

	ts := map[string]float64{"qty_lag_1": 2.0}
	_, err = asm.Assemble(sampleTransaction(), ts)
	assert.ErrorIs(t, err, featureschema.ErrSchemaMismatch)
}

func TestAssembleMissingFieldFails(t *testing.T) {
	asm, err := NewAssembler(featureschema.DefaultManifest())
	require.NoError(t, err)

	tx := sampleTransaction()
	tx.ItemCode = ""
	_, err = asm.Assemble(tx, nil)
	assert.ErrorIs(t, err, featureschema.ErrMissingField)
}

func TestAssembleBadDatePropagates(t *testing.T) {
	asm, err := NewAssembler(featureschema.DefaultManifest())
	require.NoError(t, err)

	tx := sampleTransaction()
	tx.Date = "01/01/2023"
	_, err = asm.Assemble(tx, nil)
	assert.ErrorIs(t, err, ErrUnparseableDate)
}

func TestNewAssemblerRejectsDriftedManifest(t *testing.T) {
	m := featureschema.DefaultManifest()
	m.FeatureColumns = m.FeatureColumns[1:]
	_, err := NewAssembler(m)
	assert.ErrorIs(t, err, featureschema.ErrSchemaMismatch)

	_, err = NewAssembler(nil)
	assert.ErrorIs(t, err, featureschema.ErrSchemaMismatch)
}

func TestAssembleColumnOrderMatchesManifest(t *testing.T) {
	asm, err := NewAssembler(featureschema.DefaultManifest())
	require.NoError(t, err)
	assert.Equal(t, featureschema.Columns(), asm.Columns())

	// Schema stability: repeated assemblies keep identical order and width.
	v1, err := asm.Assemble(sampleTransaction(), nil)
	require.NoError(t, err)
	v2, err := asm.Assemble(sampleTransaction(), nil)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}
