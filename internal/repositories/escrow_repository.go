package repositories

import (
	"context"

	"freelink/internal/models"

	"gorm.io/gorm"
)

type escrowRepository struct {
	db *gorm.DB
}

func (r *escrowRepository) Create(ctx context.Context, escrow *models.Escrow) error {
	return translate("create escrow", r.db.WithContext(ctx).Create(escrow).Error)
}

func (r *escrowRepository) GetByID(ctx context.Context, id uint) (*models.Escrow, error) {
	var escrow models.Escrow
	if err := r.db.WithContext(ctx).First(&escrow, id).Error; err != nil {
		return nil, translate("get escrow", err)
	}
	return &escrow, nil
}

func (r *escrowRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Escrow, error) {
	var escrow models.Escrow
	if err := forUpdate(r.db.WithContext(ctx)).First(&escrow, id).Error; err != nil {
		return nil, translate("lock escrow", err)
	}
	return &escrow, nil
}

func (r *escrowRepository) GetByTransactionID(ctx context.Context, transactionID uint) (*models.Escrow, error) {
	var escrow models.Escrow
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&escrow).Error; err != nil {
		return nil, translate("get escrow", err)
	}
	return &escrow, nil
}

func (r *escrowRepository) Update(ctx context.Context, escrow *models.Escrow) error {
	return translate("update escrow", r.db.WithContext(ctx).Save(escrow).Error)
}

func (r *escrowRepository) List(ctx context.Context, filter ListFilter) ([]models.Escrow, error) {
	var escrows []models.Escrow
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if !filter.All {
		q = q.Where("client_id = ? OR freelancer_id = ?", filter.UserID, filter.UserID)
	}
	if err := paginate(q, filter.Limit, filter.Offset).Find(&escrows).Error; err != nil {
		return nil, translate("list escrows", err)
	}
	return escrows, nil
}
