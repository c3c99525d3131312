package memory

import (
	"context"
	"time"

	"freelink/internal/models"
	"freelink/internal/repositories"
)

type transactionRepo struct{ s *Store }

func (r transactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	defer r.s.lock()()
	for _, t := range r.s.st.transactions {
		if t.Reference == tx.Reference {
			return repositories.ErrDuplicate
		}
	}
	tx.ID = r.s.st.id()
	if tx.Status == "" {
		tx.Status = models.TransactionPending
	}
	tx.CreatedAt = r.s.now()
	tx.UpdatedAt = tx.CreatedAt
	r.s.st.transactions[tx.ID] = *tx
	return nil
}

func (r transactionRepo) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	defer r.s.lock()()
	t, ok := r.s.st.transactions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r transactionRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r transactionRepo) Update(ctx context.Context, tx *models.Transaction) error {
	defer r.s.lock()()
	if _, ok := r.s.st.transactions[tx.ID]; !ok {
		return repositories.ErrNotFound
	}
	tx.UpdatedAt = r.s.now()
	r.s.st.transactions[tx.ID] = *tx
	return nil
}

func (r transactionRepo) List(ctx context.Context, filter repositories.ListFilter) ([]models.Transaction, error) {
	defer r.s.lock()()
	txs := []models.Transaction{}
	for _, t := range r.s.st.transactions {
		if filter.All || t.IsParty(filter.UserID) {
			txs = append(txs, t)
		}
	}
	newestFirst(txs,
		func(t models.Transaction) time.Time { return t.CreatedAt },
		func(t models.Transaction) uint { return t.ID },
	)
	return page(txs, filter.Limit, filter.Offset), nil
}
