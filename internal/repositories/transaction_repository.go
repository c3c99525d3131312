package repositories

import (
	"context"

	"freelink/internal/models"

	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return translate("create transaction", r.db.WithContext(ctx).Create(tx).Error)
}

func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		return nil, translate("get transaction", err)
	}
	return &tx, nil
}

func (r *transactionRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := forUpdate(r.db.WithContext(ctx)).First(&tx, id).Error; err != nil {
		return nil, translate("lock transaction", err)
	}
	return &tx, nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	return translate("update transaction", r.db.WithContext(ctx).Save(tx).Error)
}

func (r *transactionRepository) List(ctx context.Context, filter ListFilter) ([]models.Transaction, error) {
	var txs []models.Transaction
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if !filter.All {
		q = q.Where("client_id = ? OR freelancer_id = ?", filter.UserID, filter.UserID)
	}
	if err := paginate(q, filter.Limit, filter.Offset).Find(&txs).Error; err != nil {
		return nil, translate("list transactions", err)
	}
	return txs, nil
}
