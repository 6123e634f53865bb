// Package domain defines the historical transaction dataset consumed by the
// training pipeline.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/retailops/quantclass/internal/featureschema"
	"gorm.io/gorm"
)

// Dataset splits. Train rows fit the model, test rows only score it.
const (
	SplitTrain = "train"
	SplitTest  = "test"
)

var (
	ErrUnknownSplit  = errors.New("unknown_split")
	ErrUnknownSource = errors.New("unknown_dataset_source")
	ErrEmptyDataset  = errors.New("empty_dataset")
)

// LabeledTransaction is one historical sales record with its quantity class.
type LabeledTransaction struct {
	featureschema.Transaction
	Class int
}

// HistoricalTransaction is the persisted form of a labeled record.
type HistoricalTransaction struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	Split         string       `gorm:"index"`
	Date          string
	BranchID      string
	InvoiceNumber string
	ItemCode      string
	QuantitySold  float64
	Class         int
	CreatedAt     time.Time
}

func (HistoricalTransaction) TableName() string {
	return "historical_transactions"
}

// Labeled converts the stored row back into its training form.
func (t HistoricalTransaction) Labeled() LabeledTransaction {
	return LabeledTransaction{
		Transaction: featureschema.Transaction{
			Date:          t.Date,
			BranchID:      t.BranchID,
			InvoiceNumber: t.InvoiceNumber,
			ItemCode:      t.ItemCode,
			QuantitySold:  t.QuantitySold,
		},
		Class: t.Class,
	}
}

// Loader supplies labeled transactions per split, regardless of where they
// live (CSV files or the historical transaction store).
type Loader interface {
	LoadSplit(ctx context.Context, split string) ([]LabeledTransaction, error)
}

// Importer replaces a split in the historical transaction store from its
// CSV source.
type Importer interface {
	ImportSplit(ctx context.Context, split string) error
}

// Repository persists historical transactions.
type Repository interface {
	BulkInsert(ctx context.Context, db *gorm.DB, rows []HistoricalTransaction) error
	ListBySplit(ctx context.Context, db *gorm.DB, split string) ([]HistoricalTransaction, error)
	DeleteSplit(ctx context.Context, db *gorm.DB, split string) error
}
