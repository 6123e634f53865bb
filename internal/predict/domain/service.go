// Package domain defines the online prediction contract.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/retailops/quantclass/internal/features"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPredictionFailed = errors.New("prediction_failed")
)

// PredictRequest is one transaction to classify. Branch and item display
// names are accepted for caller convenience but never influence the feature
// vector.
type PredictRequest struct {
	Date          string  `json:"Date" binding:"required"`
	BranchID      string  `json:"BranchID" binding:"required"`
	BranchName    string  `json:"BranchName"`
	InvoiceNumber string  `json:"InvoiceNumber" binding:"required"`
	ItemCode      string  `json:"ItemCode" binding:"required"`
	ItemName      string  `json:"ItemName"`
	QuantitySold  float64 `json:"QuantitySold"`
}

// PredictResponse carries the predicted class. History is always "none":
// online requests arrive without per-group sales history, so every lag and
// rolling feature is served as zero.
type PredictResponse struct {
	Prediction    string    `json:"prediction"`
	ClassID       int       `json:"class_id"`
	Probabilities []float64 `json:"probabilities"`
	History       string    `json:"history"`
}

// PredictionLog is the audit record of one served prediction.
type PredictionLog struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	RequestID     string
	Date          string
	BranchID      string
	InvoiceNumber string
	ItemCode      string
	Prediction    string
	ClassID       int
	Probabilities datatypes.JSONSlice[float64]
	CreatedAt     time.Time
}

func (PredictionLog) TableName() string {
	return "prediction_logs"
}

// Model is the serving side of the classifier. Ready reports whether the
// artifacts loaded; when false every Predict fails fast.
type Model interface {
	Ready() bool
	Predict(vector []float64) (int, []float64, error)
	Assembler() (*features.Assembler, error)
}

// Service classifies transactions.
type Service interface {
	Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error)
	Ready() bool
}

// Repository persists prediction logs.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *PredictionLog) error
}
