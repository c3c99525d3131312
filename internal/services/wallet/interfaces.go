package wallet

import (
	"context"

	"freelink/internal/models"

	"github.com/shopspring/decimal"
)

// Service defines the wallet operations exposed to handlers.
type Service interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	CreateWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	Deposit(ctx context.Context, userID uint, amount decimal.Decimal, reason, reference string) (*models.Wallet, error)
	Withdraw(ctx context.Context, userID uint, amount decimal.Decimal, reason string) (*models.Wallet, error)
	History(ctx context.Context, userID uint, limit, offset int) ([]models.WalletEntry, int64, error)
	// FundDeposit charges paymentMethod and deposits the amount once the
	// charge succeeds.
	// A charge the wallet was already credited for is not credited again.
	FundDeposit(ctx context.Context, userID uint, amount decimal.Decimal, paymentMethod, idempotencyKey string) (*models.Wallet, error)
	// SetPayoutAccount records the connected account payouts are sent to.
	SetPayoutAccount(ctx context.Context, userID uint, accountID string) (*models.Wallet, error)
	// Payout sends amount to the payout account and debits the wallet. The
	// debit is rolled back if the gateway rejects the transfer.
	Payout(ctx context.Context, userID uint, amount decimal.Decimal, idempotencyKey string) (*models.Wallet, error)
}

// Cache is the read-through wallet cache.
type Cache interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	// WalletVersion is bumped by every invalidation of the user's wallet.
	WalletVersion(ctx context.Context, userID uint) (int64, error)
	// CacheWallet is a no-op if the wallet was invalidated since version.
	CacheWallet(ctx context.Context, wallet *models.Wallet, version int64) error
	InvalidateWallets(ctx context.Context, userIDs ...uint) error
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	RecordOperationResult(operation, result string)
	RecordCacheHit(key string)
	RecordCacheMiss(key string)
	RecordError(operation, errType string)
}

// Config holds configuration for wallet operations
type Config struct {
	DefaultCurrency string
}
