package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "freelink/internal/errors"
	"freelink/internal/logging"
	"freelink/internal/models"
	"freelink/internal/repositories"
	"freelink/internal/repositories/lock"
	"freelink/internal/services/wallet"

	"go.uber.org/zap"
)

type service struct {
	store  repositories.Store
	locker lock.Locker
	cache  wallet.Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the escrow service. locker and cache are optional.
func NewService(store repositories.Store, locker lock.Locker, cache wallet.Cache, logger *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if locker == nil {
		locker = lock.Noop{}
	}
	if cache == nil {
		cache = wallet.NoopCache{}
	}
	logger = logging.OrNop(logger)
	return &service{
		store:  store,
		locker: locker,
		cache:  cache,
		logger: logger.Named("escrow"),
		now:    time.Now,
	}
}

func (s *service) Create(ctx context.Context, actorID, transactionID uint) (*models.Escrow, error) {
	var created *models.Escrow
	err := s.store.WithinTx(ctx, func(store repositories.Store) error {
		tx, err := store.Transactions().GetByIDForUpdate(ctx, transactionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return err
		}
		if tx.ClientID != actorID {
			return apperrors.ErrForbidden.Withf("only the client can fund an escrow")
		}
		if tx.Status != models.TransactionPending {
			return apperrors.ErrInvalidTransactionStatus.Withf("transaction is %s, escrow requires PENDING", tx.Status)
		}
		if _, err := store.Escrows().GetByTransactionID(ctx, tx.ID); err == nil {
			return apperrors.ErrEscrowExists
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		wallets, err := wallet.LockWallets(ctx, store, tx.ClientID)
		if err != nil {
			return err
		}
		if err := wallet.Hold(ctx, store, wallets[tx.ClientID], tx.Amount, "escrow hold", tx.Reference); err != nil {
			return err
		}

		e := &models.Escrow{
			TransactionID: tx.ID,
			ClientID:      tx.ClientID,
			FreelancerID:  tx.FreelancerID,
			Amount:        tx.Amount,
			Status:        models.EscrowHeld,
		}
		if err := store.Escrows().Create(ctx, e); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperrors.ErrEscrowExists
			}
			return err
		}
		created = e
		return nil
	})
	if err != nil {
		return nil, s.fail("create", transactionID, err)
	}

	s.invalidate(ctx, created.ClientID)
	s.logger.Info("escrow funded",
		zap.Uint("escrow_id", created.ID),
		zap.Uint("transaction_id", transactionID),
		zap.String("amount", created.Amount.StringFixed(2)),
	)
	return created, nil
}

func (s *service) Get(ctx context.Context, actorID, id uint) (*models.Escrow, error) {
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}
	e, err := s.store.Escrows().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrEscrowNotFound
		}
		return nil, fmt.Errorf("failed to get escrow: %w", err)
	}
	if !actor.IsStaff && !e.IsParty(actorID) {
		return nil, apperrors.ErrForbidden
	}
	return e, nil
}

func (s *service) ListForUser(ctx context.Context, actorID uint, limit, offset int) ([]models.Escrow, error) {
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.store.Escrows().List(ctx, repositories.ListFilter{
		UserID: actorID,
		All:    actor.IsStaff,
		Limit:  limit,
		Offset: offset,
	})
}

// Release settles a HELD escrow to the freelancer. DISPUTED escrows settle
// only via ResolveDispute.
func (s *service) Release(ctx context.Context, actorID, escrowID uint) (*models.Escrow, error) {
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var result *models.Escrow
	err = s.withEscrow(ctx, escrowID, func(store repositories.Store, e *models.Escrow) error {
		if e.ClientID != actorID && !actor.IsStaff {
			return apperrors.ErrForbidden.Withf("only the client or staff can release an escrow")
		}
		if e.Status != models.EscrowHeld {
			return apperrors.ErrInvalidEscrowState.Withf("cannot release a %s escrow", e.Status)
		}
		if err := s.release(ctx, store, e); err != nil {
			return err
		}
		result = e
		return nil
	})
	if err != nil {
		return nil, s.fail("release", escrowID, err)
	}

	s.settled(ctx, result, actorID)
	return result, nil
}

// Refund returns a HELD escrow to the client. DISPUTED escrows settle only
// via ResolveDispute.
func (s *service) Refund(ctx context.Context, actorID, escrowID uint) (*models.Escrow, error) {
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var result *models.Escrow
	err = s.withEscrow(ctx, escrowID, func(store repositories.Store, e *models.Escrow) error {
		if e.FreelancerID != actorID && !actor.IsStaff {
			return apperrors.ErrForbidden.Withf("only the freelancer or staff can refund an escrow")
		}
		if e.Status != models.EscrowHeld {
			return apperrors.ErrInvalidEscrowState.Withf("cannot refund a %s escrow", e.Status)
		}
		if err := s.refund(ctx, store, e); err != nil {
			return err
		}
		result = e
		return nil
	})
	if err != nil {
		return nil, s.fail("refund", escrowID, err)
	}

	s.settled(ctx, result, actorID)
	return result, nil
}

// release pays the held amount to the freelancer. e must be row-locked.
func (s *service) release(ctx context.Context, store repositories.Store, e *models.Escrow) error {
	if !e.Status.Settleable() {
		return apperrors.ErrInvalidEscrowState.Withf("cannot release a %s escrow", e.Status)
	}
	tx, err := s.lockTransaction(ctx, store, e.TransactionID)
	if err != nil {
		return err
	}
	wallets, err := wallet.LockWallets(ctx, store, e.ClientID, e.FreelancerID)
	if err != nil {
		return err
	}
	if err := wallet.SettleHeld(ctx, store, wallets[e.ClientID], e.Amount, "escrow release", tx.Reference); err != nil {
		return err
	}
	if err := wallet.Credit(ctx, store, wallets[e.FreelancerID], e.Amount, "escrow release", tx.Reference); err != nil {
		return err
	}

	now := s.now()
	e.Status = models.EscrowReleased
	e.ReleasedAt = &now
	if err := store.Escrows().Update(ctx, e); err != nil {
		return err
	}
	tx.Status = models.TransactionCompleted
	return store.Transactions().Update(ctx, tx)
}

// refund returns the held amount to the client's balance. e must be row-locked.
func (s *service) refund(ctx context.Context, store repositories.Store, e *models.Escrow) error {
	if !e.Status.Settleable() {
		return apperrors.ErrInvalidEscrowState.Withf("cannot refund a %s escrow", e.Status)
	}
	tx, err := s.lockTransaction(ctx, store, e.TransactionID)
	if err != nil {
		return err
	}
	wallets, err := wallet.LockWallets(ctx, store, e.ClientID)
	if err != nil {
		return err
	}
	if err := wallet.Unhold(ctx, store, wallets[e.ClientID], e.Amount, "escrow refund", tx.Reference); err != nil {
		return err
	}

	now := s.now()
	e.Status = models.EscrowRefunded
	e.RefundedAt = &now
	if err := store.Escrows().Update(ctx, e); err != nil {
		return err
	}
	tx.Status = models.TransactionRefunded
	return store.Transactions().Update(ctx, tx)
}

// withEscrow takes the distributed lock for escrowID, then runs fn in a
// database transaction with the escrow row locked.
func (s *service) withEscrow(ctx context.Context, escrowID uint, fn func(store repositories.Store, e *models.Escrow) error) error {
	err := s.locker.WithLock(ctx, lockKey(escrowID), func(ctx context.Context) error {
		return s.store.WithinTx(ctx, func(store repositories.Store) error {
			e, err := store.Escrows().GetByIDForUpdate(ctx, escrowID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return apperrors.ErrEscrowNotFound
				}
				return err
			}
			return fn(store, e)
		})
	})
	if errors.Is(err, lock.ErrBusy) {
		return apperrors.ErrEscrowBusy
	}
	return err
}

func (s *service) lockTransaction(ctx context.Context, store repositories.Store, id uint) (*models.Transaction, error) {
	tx, err := store.Transactions().GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

func (s *service) user(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *service) settled(ctx context.Context, e *models.Escrow, actorID uint) {
	s.invalidate(ctx, e.ClientID, e.FreelancerID)
	s.logger.Info("escrow settled",
		zap.Uint("escrow_id", e.ID),
		zap.Uint("actor_id", actorID),
		zap.String("status", string(e.Status)),
		zap.String("amount", e.Amount.StringFixed(2)),
	)
}

func (s *service) invalidate(ctx context.Context, userIDs ...uint) {
	if err := s.cache.InvalidateWallets(ctx, userIDs...); err != nil {
		s.logger.Warn("wallet cache invalidation failed", zap.Error(err))
	}
}

// fail logs unexpected errors; domain rejections are returned silently.
func (s *service) fail(op string, id uint, err error) error {
	if _, ok := apperrors.As(err); !ok {
		s.logger.Error("escrow operation failed", zap.String("op", op), zap.Uint("id", id), zap.Error(err))
	}
	return err
}

func lockKey(escrowID uint) string {
	return fmt.Sprintf("lock:escrow:%d", escrowID)
}
