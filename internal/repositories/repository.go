package repositories

import (
	"context"
	"errors"

	"freelink/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("record already exists")
	ErrOpenDisputeExists = errors.New("escrow already has an open dispute")
)

// ListFilter scopes list queries to the records a user takes part in.
// All lifts the scope, for staff.
type ListFilter struct {
	UserID uint
	All    bool
	Limit  int
	Offset int
}

// EntryFilter narrows a ledger lookup. Empty fields match anything.
type EntryFilter struct {
	Type              models.EntryType
	Reference         string
	ExternalReference string
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetByLogin matches email, username or phone.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	// GetByUserIDForUpdate row-locks the wallet until the surrounding
	// transaction ends.
	GetByUserIDForUpdate(ctx context.Context, userID uint) (*models.Wallet, error)
	Update(ctx context.Context, wallet *models.Wallet) error
	// AddEntry fails with ErrDuplicate if the wallet already has an entry
	// with the same ExternalReference.
	AddEntry(ctx context.Context, entry *models.WalletEntry) error
	// FindEntry returns the oldest entry of the wallet matching filter.
	FindEntry(ctx context.Context, walletID uint, filter EntryFilter) (*models.WalletEntry, error)
	// ListEntries returns a page of ledger entries, newest first, and the total count.
	ListEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletEntry, int64, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	List(ctx context.Context, filter ListFilter) ([]models.Transaction, error)
}

type EscrowRepository interface {
	Create(ctx context.Context, escrow *models.Escrow) error
	GetByID(ctx context.Context, id uint) (*models.Escrow, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Escrow, error)
	GetByTransactionID(ctx context.Context, transactionID uint) (*models.Escrow, error)
	Update(ctx context.Context, escrow *models.Escrow) error
	List(ctx context.Context, filter ListFilter) ([]models.Escrow, error)
}

type DisputeRepository interface {
	// Create fails with ErrOpenDisputeExists if the escrow already has an
	// OPEN dispute.
	Create(ctx context.Context, dispute *models.EscrowDispute) error
	GetByID(ctx context.Context, id uint) (*models.EscrowDispute, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.EscrowDispute, error)
	Update(ctx context.Context, dispute *models.EscrowDispute) error
	// List returns disputes with the given status, or all when status is empty.
	List(ctx context.Context, status models.DisputeStatus) ([]models.EscrowDispute, error)
	ListByEscrow(ctx context.Context, escrowID uint) ([]models.EscrowDispute, error)
}

// Store groups the repositories and runs work atomically across them.
type Store interface {
	Users() UserRepository
	Wallets() WalletRepository
	Transactions() TransactionRepository
	Escrows() EscrowRepository
	Disputes() DisputeRepository

	// WithinTx runs fn against a transactional Store. Everything fn does is
	// committed if it returns nil and rolled back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
