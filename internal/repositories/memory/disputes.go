package memory

import (
	"context"
	"time"

	"freelink/internal/models"
	"freelink/internal/repositories"
)

type disputeRepo struct{ s *Store }

func (r disputeRepo) Create(ctx context.Context, dispute *models.EscrowDispute) error {
	defer r.s.lock()()
	for _, d := range r.s.st.disputes {
		if d.EscrowID == dispute.EscrowID && d.Status == models.DisputeOpen {
			return repositories.ErrOpenDisputeExists
		}
	}
	dispute.ID = r.s.st.id()
	if dispute.Status == "" {
		dispute.Status = models.DisputeOpen
	}
	dispute.CreatedAt = r.s.now()
	dispute.UpdatedAt = dispute.CreatedAt
	r.s.st.disputes[dispute.ID] = *dispute
	return nil
}

func (r disputeRepo) GetByID(ctx context.Context, id uint) (*models.EscrowDispute, error) {
	defer r.s.lock()()
	d, ok := r.s.st.disputes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &d, nil
}

func (r disputeRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.EscrowDispute, error) {
	return r.GetByID(ctx, id)
}

func (r disputeRepo) Update(ctx context.Context, dispute *models.EscrowDispute) error {
	defer r.s.lock()()
	if _, ok := r.s.st.disputes[dispute.ID]; !ok {
		return repositories.ErrNotFound
	}
	dispute.UpdatedAt = r.s.now()
	r.s.st.disputes[dispute.ID] = *dispute
	return nil
}

func (r disputeRepo) List(ctx context.Context, status models.DisputeStatus) ([]models.EscrowDispute, error) {
	return r.filter(func(d models.EscrowDispute) bool {
		return status == "" || d.Status == status
	}), nil
}

func (r disputeRepo) ListByEscrow(ctx context.Context, escrowID uint) ([]models.EscrowDispute, error) {
	return r.filter(func(d models.EscrowDispute) bool {
		return d.EscrowID == escrowID
	}), nil
}

func (r disputeRepo) filter(keep func(models.EscrowDispute) bool) []models.EscrowDispute {
	defer r.s.lock()()
	disputes := []models.EscrowDispute{}
	for _, d := range r.s.st.disputes {
		if keep(d) {
			disputes = append(disputes, d)
		}
	}
	newestFirst(disputes,
		func(d models.EscrowDispute) time.Time { return d.CreatedAt },
		func(d models.EscrowDispute) uint { return d.ID },
	)
	return disputes
}
