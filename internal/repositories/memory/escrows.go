package memory

import (
	"context"
	"time"

	"freelink/internal/models"
	"freelink/internal/repositories"
)

type escrowRepo struct{ s *Store }

func (r escrowRepo) Create(ctx context.Context, escrow *models.Escrow) error {
	defer r.s.lock()()
	for _, e := range r.s.st.escrows {
		if e.TransactionID == escrow.TransactionID {
			return repositories.ErrDuplicate
		}
	}
	escrow.ID = r.s.st.id()
	if escrow.Status == "" {
		escrow.Status = models.EscrowHeld
	}
	escrow.CreatedAt = r.s.now()
	escrow.UpdatedAt = escrow.CreatedAt
	r.s.st.escrows[escrow.ID] = *escrow
	return nil
}

func (r escrowRepo) GetByID(ctx context.Context, id uint) (*models.Escrow, error) {
	defer r.s.lock()()
	e, ok := r.s.st.escrows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &e, nil
}

func (r escrowRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Escrow, error) {
	return r.GetByID(ctx, id)
}

func (r escrowRepo) GetByTransactionID(ctx context.Context, transactionID uint) (*models.Escrow, error) {
	defer r.s.lock()()
	for _, e := range r.s.st.escrows {
		if e.TransactionID == transactionID {
			return &e, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r escrowRepo) Update(ctx context.Context, escrow *models.Escrow) error {
	defer r.s.lock()()
	if _, ok := r.s.st.escrows[escrow.ID]; !ok {
		return repositories.ErrNotFound
	}
	escrow.UpdatedAt = r.s.now()
	r.s.st.escrows[escrow.ID] = *escrow
	return nil
}

func (r escrowRepo) List(ctx context.Context, filter repositories.ListFilter) ([]models.Escrow, error) {
	defer r.s.lock()()
	escrows := []models.Escrow{}
	for _, e := range r.s.st.escrows {
		if filter.All || e.IsParty(filter.UserID) {
			escrows = append(escrows, e)
		}
	}
	newestFirst(escrows,
		func(e models.Escrow) time.Time { return e.CreatedAt },
		func(e models.Escrow) uint { return e.ID },
	)
	return page(escrows, filter.Limit, filter.Offset), nil
}
