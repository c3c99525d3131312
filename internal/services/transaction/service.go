package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "freelink/internal/errors"
	"freelink/internal/logging"
	"freelink/internal/models"
	"freelink/internal/repositories"
	"freelink/internal/services/wallet"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type service struct {
	store  repositories.Store
	cache  wallet.Cache
	logger *zap.Logger
}

func NewService(store repositories.Store, cache wallet.Cache, logger *zap.Logger) Service {
	if cache == nil {
		cache = wallet.NoopCache{}
	}
	logger = logging.OrNop(logger)
	return &service{store: store, cache: cache, logger: logger.Named("transaction")}
}

func (s *service) Create(ctx context.Context, clientID, freelancerID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	client, err := s.user(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsClient || !client.IsVerified {
		return nil, apperrors.ErrNotVerifiedClient
	}

	if freelancerID == clientID {
		return nil, apperrors.ErrInvalidFreelancer
	}
	freelancer, err := s.store.Users().GetByID(ctx, freelancerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrInvalidFreelancer.Withf("user %d does not exist", freelancerID)
		}
		return nil, fmt.Errorf("failed to get freelancer: %w", err)
	}
	if !freelancer.IsFreelancer {
		return nil, apperrors.ErrInvalidFreelancer
	}

	if err := models.ValidateAmount(amount); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		ClientID:     clientID,
		FreelancerID: freelancerID,
		Amount:       amount,
		Description:  strings.TrimSpace(description),
		Reference:    uuid.NewString(),
		Status:       models.TransactionPending,
	}
	if err := s.store.Transactions().Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.logger.Info("transaction created",
		zap.Uint("transaction_id", tx.ID),
		zap.Uint("client_id", clientID),
		zap.Uint("freelancer_id", freelancerID),
		zap.String("amount", amount.StringFixed(2)),
	)
	return tx, nil
}

func (s *service) Get(ctx context.Context, actorID, id uint) (*models.Transaction, error) {
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}
	tx, err := s.store.Transactions().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if !actor.IsStaff && !tx.IsParty(actorID) {
		return nil, apperrors.ErrForbidden
	}
	return tx, nil
}

func (s *service) ListForUser(ctx context.Context, actorID uint, limit, offset int) ([]models.Transaction, error) {
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.store.Transactions().List(ctx, repositories.ListFilter{
		UserID: actorID,
		All:    actor.IsStaff,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *service) UpdateStatus(ctx context.Context, actorID, id uint, status models.TransactionStatus) (*models.Transaction, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidTransactionStatus.Withf("unknown status %q", status)
	}
	actor, err := s.user(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var (
		result  *models.Transaction
		touched []uint
	)
	err = s.store.WithinTx(ctx, func(store repositories.Store) error {
		tx, err := store.Transactions().GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return err
		}
		if tx.ClientID != actorID && !actor.IsStaff {
			return apperrors.ErrForbidden.Withf("only the client or staff can update a transaction")
		}
		if tx.Status == status {
			result = tx
			return nil
		}
		if !tx.Status.CanTransitionTo(status) {
			return apperrors.ErrInvalidTransactionStatus.Withf("cannot change status from %s to %s", tx.Status, status)
		}

		if _, err := store.Escrows().GetByTransactionID(ctx, tx.ID); err == nil {
			return apperrors.ErrSettleThroughEscrow
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		switch {
		case status == models.TransactionCompleted:
			if err := s.transfer(ctx, store, tx, tx.ClientID, tx.FreelancerID, "payment"); err != nil {
				return err
			}
			touched = []uint{tx.ClientID, tx.FreelancerID}
		case status == models.TransactionRefunded && tx.Status == models.TransactionCompleted:
			if err := s.transfer(ctx, store, tx, tx.FreelancerID, tx.ClientID, "payment reversal"); err != nil {
				return err
			}
			touched = []uint{tx.ClientID, tx.FreelancerID}
		}

		tx.Status = status
		if err := store.Transactions().Update(ctx, tx); err != nil {
			return err
		}
		result = tx
		return nil
	})
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			s.logger.Error("transaction status update failed", zap.Uint("transaction_id", id), zap.Error(err))
		}
		return nil, err
	}

	if err := s.cache.InvalidateWallets(ctx, touched...); err != nil {
		s.logger.Warn("wallet cache invalidation failed", zap.Error(err))
	}
	s.logger.Info("transaction status updated",
		zap.Uint("transaction_id", id),
		zap.Uint("actor_id", actorID),
		zap.String("status", string(result.Status)),
	)
	return result, nil
}

func (s *service) transfer(ctx context.Context, store repositories.Store, tx *models.Transaction, from, to uint, reason string) error {
	wallets, err := wallet.LockWallets(ctx, store, from, to)
	if err != nil {
		return err
	}
	if err := wallet.Debit(ctx, store, wallets[from], tx.Amount, reason, tx.Reference); err != nil {
		return err
	}
	return wallet.Credit(ctx, store, wallets[to], tx.Amount, reason, tx.Reference)
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
