package escrow

import (
	"context"
	"testing"

	"freelink/internal/models"
	"freelink/internal/repositories/lock"
	"freelink/internal/repositories/memory"
	"freelink/internal/services/transaction"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	ctx        context.Context
	store      *memory.Store
	svc        Service
	txs        transaction.Service
	client     *models.User
	freelancer *models.User
	staff      *models.User
	outsider   *models.User
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newFixture(t *testing.T, locker lock.Locker) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), store: memory.NewStore()}
	f.svc = NewService(f.store, locker, nil, zap.NewNop())
	f.txs = transaction.NewService(f.store, nil, zap.NewNop())
	f.client = f.addUser(t, &models.User{Username: "client", IsClient: true, IsVerified: true}, "150")
	f.freelancer = f.addUser(t, &models.User{Username: "freelancer", IsFreelancer: true, IsVerified: true}, "0")
	f.staff = f.addUser(t, &models.User{Username: "admin", IsStaff: true}, "0")
	f.outsider = f.addUser(t, &models.User{Username: "outsider", IsFreelancer: true}, "0")
	return f
}

func (f *fixture) addUser(t *testing.T, u *models.User, balance string) *models.User {
	t.Helper()
	u.Email = u.Username + "@example.com"
	u.Phone = "+1" + u.Username
	require.NoError(t, f.store.Users().Create(f.ctx, u))
	w := &models.Wallet{UserID: u.ID}
	require.NoError(t, f.store.Wallets().Create(f.ctx, w))
	if b := dec(balance); b.IsPositive() {
		w.Balance = b
		require.NoError(t, f.store.Wallets().Update(f.ctx, w))
	}
	return u
}

func (f *fixture) wallet(t *testing.T, userID uint) *models.Wallet {
	t.Helper()
	w, err := f.store.Wallets().GetByUserID(f.ctx, userID)
	require.NoError(t, err)
	return w
}

func (f *fixture) transaction(t *testing.T, id uint) *models.Transaction {
	t.Helper()
	tx, err := f.store.Transactions().GetByID(f.ctx, id)
	require.NoError(t, err)
	return tx
}

// heldEscrow creates a transaction for amount and funds an escrow for it.
func (f *fixture) heldEscrow(t *testing.T, amount string) *models.Escrow {
	t.Helper()
	tx, err := f.txs.Create(f.ctx, f.client.ID, f.freelancer.ID, dec(amount), "milestone")
	require.NoError(t, err)
	e, err := f.svc.Create(f.ctx, f.client.ID, tx.ID)
	require.NoError(t, err)
	return e
}

func (f *fixture) disputedEscrow(t *testing.T, amount string) (*models.Escrow, *models.EscrowDispute) {
	t.Helper()
	e := f.heldEscrow(t, amount)
	d, err := f.svc.Dispute(f.ctx, f.freelancer.ID, e.ID, "client stopped responding")
	require.NoError(t, err)
	return e, d
}

func (f *fixture) escrowStatus(t *testing.T, id uint) models.EscrowStatus {
	t.Helper()
	e, err := f.store.Escrows().GetByID(f.ctx, id)
	require.NoError(t, err)
	return e.Status
}
