package escrow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "freelink/internal/errors"
	"freelink/internal/models"
	"freelink/internal/repositories"

	"go.uber.org/zap"
)

func (s *service) Dispute(ctx context.Context, actorID, escrowID uint, reason string) (*models.EscrowDispute, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.ErrDisputeReasonRequired
	}

	var opened *models.EscrowDispute
	err := s.withEscrow(ctx, escrowID, func(store repositories.Store, e *models.Escrow) error {
		if !e.IsParty(actorID) {
			return apperrors.ErrForbidden.Withf("only a party to the transaction can open a dispute")
		}
		if e.Status != models.EscrowHeld {
			return apperrors.ErrInvalidEscrowState.Withf("cannot dispute a %s escrow", e.Status)
		}

		d := &models.EscrowDispute{
			EscrowID:   e.ID,
			RaisedByID: actorID,
			Reason:     reason,
			Status:     models.DisputeOpen,
		}
		if err := store.Disputes().Create(ctx, d); err != nil {
			if errors.Is(err, repositories.ErrOpenDisputeExists) {
				return apperrors.ErrInvalidEscrowState.Withf("escrow already has an open dispute")
			}
			return err
		}

		e.Status = models.EscrowDisputed
		if err := store.Escrows().Update(ctx, e); err != nil {
			return err
		}
		opened = d
		return nil
	})
	if err != nil {
		return nil, s.fail("dispute", escrowID, err)
	}

	s.logger.Info("dispute opened",
		zap.Uint("dispute_id", opened.ID),
		zap.Uint("escrow_id", escrowID),
		zap.Uint("raised_by", actorID),
	)
	return opened, nil
}

func (s *service) ResolveDispute(ctx context.Context, actorID, disputeID uint, resolution models.Resolution, notes string) (*models.EscrowDispute, error) {
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff {
		return nil, apperrors.ErrForbidden.Withf("only staff can resolve disputes")
	}
	if !resolution.Valid() {
		return nil, apperrors.ErrInvalidResolution
	}

	var (
		resolved *models.EscrowDispute
		settled  *models.Escrow
	)
	err = s.withDispute(ctx, disputeID, func(store repositories.Store, e *models.Escrow, d *models.EscrowDispute) error {
		if d.Status != models.DisputeOpen {
			return apperrors.ErrInvalidDisputeState.Withf("dispute is %s", d.Status)
		}
		if e.Status != models.EscrowDisputed {
			return apperrors.ErrInvalidEscrowState.Withf("escrow is %s", e.Status)
		}

		settle := s.refund
		if resolution == models.ResolutionRelease {
			settle = s.release
		}
		if err := settle(ctx, store, e); err != nil {
			return err
		}

		now := s.now()
		d.Status = models.DisputeResolved
		d.Resolution = resolution
		d.ResolvedByID = &actorID
		d.ResolvedAt = &now
		d.Notes = strings.TrimSpace(notes)
		if err := store.Disputes().Update(ctx, d); err != nil {
			return err
		}
		resolved, settled = d, e
		return nil
	})
	if err != nil {
		return nil, s.fail("resolve", disputeID, err)
	}

	s.settled(ctx, settled, actorID)
	s.logger.Info("dispute resolved",
		zap.Uint("dispute_id", disputeID),
		zap.Uint("resolved_by", actorID),
		zap.String("resolution", string(resolution)),
	)
	return resolved, nil
}

func (s *service) CancelDispute(ctx context.Context, actorID, disputeID uint) (*models.EscrowDispute, error) {
	var cancelled *models.EscrowDispute
	err := s.withDispute(ctx, disputeID, func(store repositories.Store, e *models.Escrow, d *models.EscrowDispute) error {
		if d.RaisedByID != actorID {
			return apperrors.ErrForbidden.Withf("only the user who raised the dispute can cancel it")
		}
		if d.Status != models.DisputeOpen {
			return apperrors.ErrInvalidDisputeState.Withf("dispute is %s", d.Status)
		}
		if e.Status != models.EscrowDisputed {
			return apperrors.ErrInvalidEscrowState.Withf("escrow is %s", e.Status)
		}

		e.Status = models.EscrowHeld
		if err := store.Escrows().Update(ctx, e); err != nil {
			return err
		}
		d.Status = models.DisputeCancelled
		if err := store.Disputes().Update(ctx, d); err != nil {
			return err
		}
		cancelled = d
		return nil
	})
	if err != nil {
		return nil, s.fail("cancel dispute", disputeID, err)
	}

	s.logger.Info("dispute cancelled", zap.Uint("dispute_id", disputeID), zap.Uint("escrow_id", cancelled.EscrowID))
	return cancelled, nil
}

func (s *service) GetDispute(ctx context.Context, actorID, disputeID uint) (*models.EscrowDispute, error) {
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}
	d, err := s.dispute(ctx, s.store, disputeID)
	if err != nil {
		return nil, err
	}
	if actor.IsStaff {
		return d, nil
	}
	e, err := s.store.Escrows().GetByID(ctx, d.EscrowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow: %w", err)
	}
	if !e.IsParty(actorID) {
		return nil, apperrors.ErrForbidden
	}
	return d, nil
}

func (s *service) ListDisputes(ctx context.Context, actorID uint, status models.DisputeStatus) ([]models.EscrowDispute, error) {
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff {
		return nil, apperrors.ErrForbidden
	}
	if status != "" && !status.Valid() {
		return nil, apperrors.ErrInvalidInput.Withf("unknown dispute status %q", status)
	}
	return s.store.Disputes().List(ctx, status)
}

// EscrowDisputes returns every dispute raised on the escrow, newest first.
func (s *service) EscrowDisputes(ctx context.Context, actorID, escrowID uint) ([]models.EscrowDispute, error) {
	if _, err := s.Get(ctx, actorID, escrowID); err != nil {
		return nil, err
	}
	disputes, err := s.store.Disputes().ListByEscrow(ctx, escrowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes of escrow %d: %w", escrowID, err)
	}
	return disputes, nil
}

// withDispute locks the dispute's escrow (distributed lock, then row) and
// the dispute row, in that order, and runs fn inside the transaction.
func (s *service) withDispute(ctx context.Context, disputeID uint, fn func(store repositories.Store, e *models.Escrow, d *models.EscrowDispute) error) error {
	d, err := s.dispute(ctx, s.store, disputeID)
	if err != nil {
		return err
	}
	return s.withEscrow(ctx, d.EscrowID, func(store repositories.Store, e *models.Escrow) error {
		locked, err := store.Disputes().GetByIDForUpdate(ctx, disputeID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.ErrDisputeNotFound
			}
			return err
		}
		return fn(store, e, locked)
	})
}

func (s *service) dispute(ctx context.Context, store repositories.Store, id uint) (*models.EscrowDispute, error) {
	d, err := store.Disputes().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrDisputeNotFound
		}
		return nil, fmt.Errorf("failed to get dispute: %w", err)
	}
	return d, nil
}
