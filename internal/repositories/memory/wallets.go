package memory

import (
	"context"
	"time"

	"freelink/internal/models"
	"freelink/internal/repositories"

	"github.com/shopspring/decimal"
)

type walletRepo struct{ s *Store }

func (r walletRepo) Create(ctx context.Context, wallet *models.Wallet) error {
	defer r.s.lock()()
	for _, w := range r.s.st.wallets {
		if w.UserID == wallet.UserID {
			return repositories.ErrDuplicate
		}
	}
	wallet.ID = r.s.st.id()
	wallet.Balance = decimal.Zero
	wallet.Held = decimal.Zero
	if wallet.Currency == "" {
		wallet.Currency = "USD"
	}
	wallet.CreatedAt = r.s.now()
	wallet.UpdatedAt = wallet.CreatedAt
	r.s.st.wallets[wallet.ID] = *wallet
	return nil
}

func (r walletRepo) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	defer r.s.lock()()
	return r.find(userID)
}

func (r walletRepo) GetByUserIDForUpdate(ctx context.Context, userID uint) (*models.Wallet, error) {
	return r.GetByUserID(ctx, userID)
}

func (r walletRepo) find(userID uint) (*models.Wallet, error) {
	for _, w := range r.s.st.wallets {
		if w.UserID == userID {
			return &w, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r walletRepo) Update(ctx context.Context, wallet *models.Wallet) error {
	defer r.s.lock()()
	if _, ok := r.s.st.wallets[wallet.ID]; !ok {
		return repositories.ErrNotFound
	}
	wallet.UpdatedAt = r.s.now()
	r.s.st.wallets[wallet.ID] = *wallet
	return nil
}

func (r walletRepo) AddEntry(ctx context.Context, entry *models.WalletEntry) error {
	defer r.s.lock()()
	if _, ok := r.s.st.wallets[entry.WalletID]; !ok {
		return repositories.ErrNotFound
	}
	if entry.ExternalReference != "" {
		for _, e := range r.s.st.entries {
			if e.WalletID == entry.WalletID && e.ExternalReference == entry.ExternalReference {
				return repositories.ErrDuplicate
			}
		}
	}
	entry.ID = r.s.st.id()
	entry.CreatedAt = r.s.now()
	r.s.st.entries = append(r.s.st.entries, *entry)
	return nil
}

func (r walletRepo) FindEntry(ctx context.Context, walletID uint, filter repositories.EntryFilter) (*models.WalletEntry, error) {
	defer r.s.lock()()
	for _, e := range r.s.st.entries {
		if e.WalletID != walletID {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.Reference != "" && e.Reference != filter.Reference {
			continue
		}
		if filter.ExternalReference != "" && e.ExternalReference != filter.ExternalReference {
			continue
		}
		return &e, nil
	}
	return nil, repositories.ErrNotFound
}

func (r walletRepo) ListEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletEntry, int64, error) {
	defer r.s.lock()()
	var entries []models.WalletEntry
	for _, e := range r.s.st.entries {
		if e.WalletID == walletID {
			entries = append(entries, e)
		}
	}
	newestFirst(entries,
		func(e models.WalletEntry) time.Time { return e.CreatedAt },
		func(e models.WalletEntry) uint { return e.ID },
	)
	return page(entries, limit, offset), int64(len(entries)), nil
}
