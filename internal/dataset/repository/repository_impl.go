package repository

import (
	"context"

	"github.com/retailops/quantclass/internal/dataset/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const insertBatchSize = 500

func (r *repo) BulkInsert(ctx context.Context, db *gorm.DB, rows []domain.HistoricalTransaction) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error
}

func (r *repo) ListBySplit(ctx context.Context, db *gorm.DB, split string) ([]domain.HistoricalTransaction, error) {
	var rows []domain.HistoricalTransaction
	err := db.WithContext(ctx).
		Raw(`SELECT id, split, date, branch_id, invoice_number, item_code, quantity_sold, class, created_at
			FROM historical_transactions
			WHERE split = ?
			ORDER BY id`, split).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) DeleteSplit(ctx context.Context, db *gorm.DB, split string) error {
	return db.WithContext(ctx).Exec(`DELETE FROM historical_transactions WHERE split = ?`, split).Error
}
