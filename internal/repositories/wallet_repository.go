package repositories

import (
	"context"

	"freelink/internal/models"

	"gorm.io/gorm"
)

type walletRepository struct {
	db *gorm.DB
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	return translate("create wallet", r.db.WithContext(ctx).Create(wallet).Error)
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, translate("get wallet", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByUserIDForUpdate(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := forUpdate(r.db.WithContext(ctx)).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, translate("lock wallet", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Update(ctx context.Context, wallet *models.Wallet) error {
	return translate("update wallet", r.db.WithContext(ctx).Save(wallet).Error)
}

func (r *walletRepository) AddEntry(ctx context.Context, entry *models.WalletEntry) error {
	return translate("add wallet entry", r.db.WithContext(ctx).Create(entry).Error)
}

func (r *walletRepository) FindEntry(ctx context.Context, walletID uint, filter EntryFilter) (*models.WalletEntry, error) {
	q := r.db.WithContext(ctx).Where("wallet_id = ?", walletID)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Reference != "" {
		q = q.Where("reference = ?", filter.Reference)
	}
	if filter.ExternalReference != "" {
		q = q.Where("external_reference = ?", filter.ExternalReference)
	}

	var entry models.WalletEntry
	if err := q.Order("id").First(&entry).Error; err != nil {
		return nil, translate("find wallet entry", err)
	}
	return &entry, nil
}

func (r *walletRepository) ListEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletEntry, int64, error) {
	var (
		entries []models.WalletEntry
		total   int64
	)
	q := r.db.WithContext(ctx).Model(&models.WalletEntry{}).Where("wallet_id = ?", walletID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count wallet entries", err)
	}
	err := paginate(q.Order("created_at DESC, id DESC"), limit, offset).Find(&entries).Error
	if err != nil {
		return nil, 0, translate("list wallet entries", err)
	}
	return entries, total, nil
}
