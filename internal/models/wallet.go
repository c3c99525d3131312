package models

import (
	"time"

	apperrors "freelink/internal/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds a user's spendable balance and the funds earmarked by
// escrows the user is paying for.
type Wallet struct {
	ID       uint            `gorm:"primarykey" json:"id"`
	UserID   uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`
	Held     decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"held"`
	Currency string          `gorm:"size:3;default:'USD'" json:"currency"`

	// PayoutAccount is the connected gateway account withdrawals are sent to.
	PayoutAccount string `gorm:"size:64" json:"payout_account,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Wallets always start empty
	w.Balance = decimal.Zero
	w.Held = decimal.Zero
	return nil
}

// Total is what the owner holds, spendable or not.
func (w *Wallet) Total() decimal.Decimal {
	return w.Balance.Add(w.Held)
}

// Credit adds amount to the spendable balance.
func (w *Wallet) Credit(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

// Debit removes amount from the spendable balance.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if w.Balance.LessThan(amount) {
		return apperrors.ErrInsufficientBalance.Withf("available %s, requested %s", w.Balance.StringFixed(2), amount.StringFixed(2))
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

// Hold moves amount from the spendable balance into held funds.
func (w *Wallet) Hold(amount decimal.Decimal) error {
	if err := w.Debit(amount); err != nil {
		return err
	}
	w.Held = w.Held.Add(amount)
	return nil
}

// Unhold returns held funds to the spendable balance.
func (w *Wallet) Unhold(amount decimal.Decimal) error {
	if err := w.SpendHeld(amount); err != nil {
		return err
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

// SpendHeld removes amount from held funds; the money leaves the wallet.
func (w *Wallet) SpendHeld(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if w.Held.LessThan(amount) {
		return apperrors.ErrInsufficientHeld.Withf("held %s, requested %s", w.Held.StringFixed(2), amount.StringFixed(2))
	}
	w.Held = w.Held.Sub(amount)
	return nil
}

// ValidateAmount rejects non-positive amounts and amounts with more than
// two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount.Withf("amount must be greater than zero")
	}
	if !amount.Equal(amount.Round(2)) {
		return apperrors.ErrInvalidAmount.Withf("amount must have at most two decimal places")
	}
	return nil
}
