package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "freelink/internal/errors"
	"freelink/internal/logging"
	"freelink/internal/models"
	"freelink/internal/repositories"
	"freelink/internal/services/funding"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type service struct {
	store   repositories.Store
	cache   Cache
	gateway funding.Gateway
	config  Config
	logger  *zap.Logger
	metrics MetricsCollector
}

// NewService creates a new wallet service. cache, gateway and metrics are
// optional.
func NewService(
	store repositories.Store,
	cache Cache,
	gateway funding.Gateway,
	config Config,
	logger *zap.Logger,
	metrics MetricsCollector,
) Service {
	if store == nil {
		panic("store is required")
	}
	if cache == nil {
		cache = NoopCache{}
	}
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = "USD"
	}
	logger = logging.OrNop(logger)
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		store:   store,
		cache:   cache,
		gateway: gateway,
		config:  config,
		logger:  logger.Named("wallet"),
		metrics: metrics,
	}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	cacheKey := fmt.Sprintf("wallet:user:%d", userID)
	if wallet, err := s.cache.GetWallet(ctx, userID); err == nil && wallet != nil {
		s.metrics.RecordCacheHit(cacheKey)
		return wallet, nil
	} else if err != nil {
		s.logger.Warn("wallet cache read failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	s.metrics.RecordCacheMiss(cacheKey)

	// Taken before the read so a write that lands in between keeps this
	// copy out of the cache.
	version, verErr := s.cache.WalletVersion(ctx, userID)

	wallet, err := s.store.Wallets().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if verErr != nil {
		s.logger.Warn("wallet cache version read failed", zap.Uint("user_id", userID), zap.Error(verErr))
		return wallet, nil
	}
	if err := s.cache.CacheWallet(ctx, wallet, version); err != nil {
		s.logger.Warn("wallet cache write failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	return wallet, nil
}

func (s *service) CreateWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	wallet := &models.Wallet{
		UserID:   userID,
		Currency: s.config.DefaultCurrency,
	}
	if err := s.store.Wallets().Create(ctx, wallet); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrWalletExists
		}
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	s.logger.Info("wallet created", zap.Uint("user_id", userID), zap.Uint("wallet_id", wallet.ID))
	return wallet, nil
}

func (s *service) Deposit(ctx context.Context, userID uint, amount decimal.Decimal, reason, reference string) (*models.Wallet, error) {
	if err := models.ValidateAmount(amount); err != nil {
		s.metrics.RecordError("deposit", "invalid_amount")
		return nil, err
	}
	if reason == "" {
		reason = "deposit"
	}

	wallet, err := s.mutate(ctx, "deposit", userID, func(tx repositories.Store, w *models.Wallet) error {
		return Credit(ctx, tx, w, amount, reason, reference)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit",
		zap.Uint("user_id", userID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balance", wallet.Balance.StringFixed(2)),
	)
	return wallet, nil
}

func (s *service) Withdraw(ctx context.Context, userID uint, amount decimal.Decimal, reason string) (*models.Wallet, error) {
	if err := models.ValidateAmount(amount); err != nil {
		s.metrics.RecordError("withdraw", "invalid_amount")
		return nil, err
	}
	if reason == "" {
		reason = "withdrawal"
	}

	wallet, err := s.mutate(ctx, "withdraw", userID, func(tx repositories.Store, w *models.Wallet) error {
		return Debit(ctx, tx, w, amount, reason, "")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal",
		zap.Uint("user_id", userID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balance", wallet.Balance.StringFixed(2)),
	)
	return wallet, nil
}

func (s *service) History(ctx context.Context, userID uint, limit, offset int) ([]models.WalletEntry, int64, error) {
	wallet, err := s.store.Wallets().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, 0, apperrors.ErrWalletNotFound
		}
		return nil, 0, fmt.Errorf("failed to get wallet: %w", err)
	}
	return s.store.Wallets().ListEntries(ctx, wallet.ID, limit, offset)
}

func (s *service) FundDeposit(ctx context.Context, userID uint, amount decimal.Decimal, paymentMethod, idempotencyKey string) (*models.Wallet, error) {
	if s.gateway == nil {
		return nil, apperrors.ErrPaymentUnavailable
	}
	if err := models.ValidateAmount(amount); err != nil {
		return nil, err
	}

	// The wallet must exist before the card is charged.
	current, err := s.store.Wallets().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	charge, err := s.gateway.Charge(ctx, funding.ChargeRequest{
		UserID:         userID,
		Amount:         amount,
		Currency:       current.Currency,
		PaymentMethod:  paymentMethod,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		s.metrics.RecordError("fund", "charge_failed")
		return nil, err
	}

	replayed := false
	wallet, err := s.mutate(ctx, "fund", userID, func(tx repositories.Store, w *models.Wallet) error {
		_, err := tx.Wallets().FindEntry(ctx, w.ID, repositories.EntryFilter{ExternalReference: charge.ID})
		switch {
		case err == nil:
			replayed = true
			return nil
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}
		return CreditExternal(ctx, tx, w, amount, "card deposit", charge.ID)
	})
	if errors.Is(err, repositories.ErrDuplicate) {
		// A concurrent request credited the same charge first.
		replayed = true
		wallet, err = s.store.Wallets().GetByUserID(ctx, userID)
	}
	if err != nil {
		// The card was charged but the ledger write failed; the charge id is
		// needed to reconcile by hand.
		s.logger.Error("charged card but deposit failed",
			zap.Uint("user_id", userID),
			zap.String("charge_id", charge.ID),
			zap.String("amount", amount.StringFixed(2)),
			zap.Error(err),
		)
		return nil, err
	}

	if replayed {
		s.logger.Info("card charge already credited",
			zap.Uint("user_id", userID),
			zap.String("charge_id", charge.ID),
		)
		return wallet, nil
	}
	s.logger.Info("card deposit",
		zap.Uint("user_id", userID),
		zap.String("charge_id", charge.ID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balance", wallet.Balance.StringFixed(2)),
	)
	return wallet, nil
}

func (s *service) SetPayoutAccount(ctx context.Context, userID uint, accountID string) (*models.Wallet, error) {
	if s.gateway == nil {
		return nil, apperrors.ErrPaymentUnavailable
	}
	accountID = strings.TrimSpace(accountID)
	if err := s.gateway.VerifyPayoutAccount(ctx, accountID); err != nil {
		return nil, err
	}

	wallet, err := s.mutate(ctx, "payout_account", userID, func(tx repositories.Store, w *models.Wallet) error {
		w.PayoutAccount = accountID
		return tx.Wallets().Update(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payout account set", zap.Uint("user_id", userID), zap.String("account", accountID))
	return wallet, nil
}

func (s *service) Payout(ctx context.Context, userID uint, amount decimal.Decimal, idempotencyKey string) (*models.Wallet, error) {
	if s.gateway == nil {
		return nil, apperrors.ErrPaymentUnavailable
	}
	if err := models.ValidateAmount(amount); err != nil {
		s.metrics.RecordError("payout", "invalid_amount")
		return nil, err
	}

	reference := "payout-" + idempotencyKey
	if idempotencyKey == "" {
		reference = "payout-" + uuid.NewString()
	}

	var (
		payout   *funding.Payout
		replayed bool
	)
	// The wallet row stays locked while the gateway is called, so the
	// balance checked here is the balance debited below.
	wallet, err := s.mutate(ctx, "payout", userID, func(tx repositories.Store, w *models.Wallet) error {
		if idempotencyKey != "" {
			_, err := tx.Wallets().FindEntry(ctx, w.ID, repositories.EntryFilter{Type: models.EntryDebit, Reference: reference})
			switch {
			case err == nil:
				replayed = true
				return nil
			case !errors.Is(err, repositories.ErrNotFound):
				return err
			}
		}
		if w.PayoutAccount == "" {
			return apperrors.ErrPayoutAccountRequired
		}
		if w.Balance.LessThan(amount) {
			return apperrors.ErrInsufficientBalance.Withf("available %s, requested %s", w.Balance.StringFixed(2), amount.StringFixed(2))
		}

		p, err := s.gateway.Payout(ctx, funding.PayoutRequest{
			UserID:         userID,
			Amount:         amount,
			Currency:       w.Currency,
			Destination:    w.PayoutAccount,
			Reference:      reference,
			IdempotencyKey: idempotencyKey,
		})
		if err != nil {
			s.metrics.RecordError("payout", "transfer_failed")
			return err
		}
		payout = p
		return DebitExternal(ctx, tx, w, amount, "withdrawal to "+w.PayoutAccount, reference, p.ID)
	})
	if err != nil {
		if payout != nil {
			// Money left through the gateway but the debit did not commit.
			s.logger.Error("paid out but debit failed",
				zap.Uint("user_id", userID),
				zap.String("payout_id", payout.ID),
				zap.String("amount", amount.StringFixed(2)),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if replayed {
		s.logger.Info("payout already sent", zap.Uint("user_id", userID), zap.String("reference", reference))
		return wallet, nil
	}
	s.logger.Info("payout",
		zap.Uint("user_id", userID),
		zap.String("payout_id", payout.ID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balance", wallet.Balance.StringFixed(2)),
	)
	return wallet, nil
}

// mutate locks the user's wallet, applies fn and commits, then drops the
// cached copy.
func (s *service) mutate(ctx context.Context, op string, userID uint, fn func(tx repositories.Store, w *models.Wallet) error) (*models.Wallet, error) {
	var result *models.Wallet
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		wallets, err := LockWallets(ctx, tx, userID)
		if err != nil {
			return err
		}
		w := wallets[userID]
		if err := fn(tx, w); err != nil {
			return err
		}
		result = w
		return nil
	})
	if err != nil {
		s.metrics.RecordOperationResult(op, "failure")
		if _, ok := apperrors.As(err); !ok {
			s.logger.Error("wallet operation failed", zap.String("op", op), zap.Uint("user_id", userID), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.RecordOperationResult(op, "success")
	if err := s.cache.InvalidateWallets(ctx, userID); err != nil {
		s.logger.Warn("wallet cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	return result, nil
}
