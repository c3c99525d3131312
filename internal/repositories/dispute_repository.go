package repositories

import (
	"context"

	"freelink/internal/models"

	"gorm.io/gorm"
)

type disputeRepository struct {
	db *gorm.DB
}

func (r *disputeRepository) Create(ctx context.Context, dispute *models.EscrowDispute) error {
	var open int64
	err := r.db.WithContext(ctx).Model(&models.EscrowDispute{}).
		Where("escrow_id = ? AND status = ?", dispute.EscrowID, models.DisputeOpen).
		Count(&open).Error
	if err != nil {
		return translate("count open disputes", err)
	}
	if open > 0 {
		return ErrOpenDisputeExists
	}
	return translate("create dispute", r.db.WithContext(ctx).Create(dispute).Error)
}

func (r *disputeRepository) GetByID(ctx context.Context, id uint) (*models.EscrowDispute, error) {
	var dispute models.EscrowDispute
	if err := r.db.WithContext(ctx).First(&dispute, id).Error; err != nil {
		return nil, translate("get dispute", err)
	}
	return &dispute, nil
}

func (r *disputeRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.EscrowDispute, error) {
	var dispute models.EscrowDispute
	if err := forUpdate(r.db.WithContext(ctx)).First(&dispute, id).Error; err != nil {
		return nil, translate("lock dispute", err)
	}
	return &dispute, nil
}

func (r *disputeRepository) Update(ctx context.Context, dispute *models.EscrowDispute) error {
	return translate("update dispute", r.db.WithContext(ctx).Save(dispute).Error)
}

func (r *disputeRepository) List(ctx context.Context, status models.DisputeStatus) ([]models.EscrowDispute, error) {
	var disputes []models.EscrowDispute
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&disputes).Error; err != nil {
		return nil, translate("list disputes", err)
	}
	return disputes, nil
}

func (r *disputeRepository) ListByEscrow(ctx context.Context, escrowID uint) ([]models.EscrowDispute, error) {
	var disputes []models.EscrowDispute
	err := r.db.WithContext(ctx).Where("escrow_id = ?", escrowID).Order("created_at DESC, id DESC").Find(&disputes).Error
	if err != nil {
		return nil, translate("list disputes", err)
	}
	return disputes, nil
}
