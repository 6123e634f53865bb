package repository

import (
	"context"

	"github.com/retailops/quantclass/internal/predict/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.PredictionLog) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO prediction_logs (
			id, request_id, date, branch_id, invoice_number, item_code,
			prediction, class_id, probabilities, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.RequestID,
		entry.Date,
		entry.BranchID,
		entry.InvoiceNumber,
		entry.ItemCode,
		entry.Prediction,
		entry.ClassID,
		entry.Probabilities,
		entry.CreatedAt,
	).Error
}
