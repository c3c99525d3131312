package wallet

import (
	"context"
	"errors"
	"fmt"
	"sort"

	apperrors "freelink/internal/errors"
	"freelink/internal/models"
	"freelink/internal/repositories"

	"github.com/shopspring/decimal"
)

// LockWallets row-locks the wallets of userIDs in ascending user order and
// returns them keyed by user id. A missing wallet fails the whole call.
func LockWallets(ctx context.Context, tx repositories.Store, userIDs ...uint) (map[uint]*models.Wallet, error) {
	ids := append([]uint(nil), userIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	wallets := make(map[uint]*models.Wallet, len(ids))
	for _, id := range ids {
		if _, ok := wallets[id]; ok {
			continue
		}
		w, err := tx.Wallets().GetByUserIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, apperrors.ErrWalletNotFound.Withf("user %d has no wallet", id)
			}
			return nil, err
		}
		wallets[id] = w
	}
	return wallets, nil
}

// Credit adds amount to the wallet balance.
func Credit(ctx context.Context, tx repositories.Store, w *models.Wallet, amount decimal.Decimal, reason, reference string) error {
	return post(ctx, tx, w, models.EntryCredit, amount, reason, entryRef{reference: reference}, w.Credit)
}

// Debit takes amount from the wallet balance.
func Debit(ctx context.Context, tx repositories.Store, w *models.Wallet, amount decimal.Decimal, reason, reference string) error {
	return post(ctx, tx, w, models.EntryDebit, amount, reason, entryRef{reference: reference}, w.Debit)
}

// Hold earmarks amount of the balance.
func Hold(ctx context.Context, tx repositories.Store, w *models.Wallet, amount decimal.Decimal, reason, reference string) error {
	return post(ctx, tx, w, models.EntryHold, amount, reason, entryRef{reference: reference}, w.Hold)
}

// Unhold returns held funds to the balance.
func Unhold(ctx context.Context, tx repositories.Store, w *models.Wallet, amount decimal.Decimal, reason, reference string) error {
	return post(ctx, tx, w, models.EntryUnhold, amount, reason, entryRef{reference: reference}, w.Unhold)
}

// SettleHeld pays held funds out of the wallet.
func SettleHeld(ctx context.Context, tx repositories.Store, w *models.Wallet, amount decimal.Decimal, reason, reference string) error {
	return post(ctx, tx, w, models.EntryDebit, amount, reason, entryRef{reference: reference}, w.SpendHeld)
}

// CreditExternal credits money that arrived through the payment gateway.
// chargeID is both the reference and the external reference, so a second
// credit for the same charge fails with repositories.ErrDuplicate.
func CreditExternal(ctx context.Context, tx repositories.Store, w *models.Wallet, amount decimal.Decimal, reason, chargeID string) error {
	return post(ctx, tx, w, models.EntryCredit, amount, reason, entryRef{reference: chargeID, external: chargeID}, w.Credit)
}

// DebitExternal debits money that left through the payment gateway.
func DebitExternal(ctx context.Context, tx repositories.Store, w *models.Wallet, amount decimal.Decimal, reason, reference, payoutID string) error {
	return post(ctx, tx, w, models.EntryDebit, amount, reason, entryRef{reference: reference, external: payoutID}, w.Debit)
}

type entryRef struct {
	reference string
	external  string
}

func post(
	ctx context.Context,
	tx repositories.Store,
	w *models.Wallet,
	entryType models.EntryType,
	amount decimal.Decimal,
	reason string,
	ref entryRef,
	apply func(decimal.Decimal) error,
) error {
	if err := apply(amount); err != nil {
		return err
	}
	if err := tx.Wallets().Update(ctx, w); err != nil {
		return fmt.Errorf("failed to save wallet %d: %w", w.ID, err)
	}
	entry := &models.WalletEntry{
		WalletID:          w.ID,
		Type:              entryType,
		Amount:            amount,
		Reason:            reason,
		Reference:         ref.reference,
		ExternalReference: ref.external,
	}
	if err := tx.Wallets().AddEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to record %s entry on wallet %d: %w", entryType, w.ID, err)
	}
	return nil
}
