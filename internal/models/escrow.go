package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EscrowStatus string

const (
	EscrowHeld     EscrowStatus = "HELD"
	EscrowReleased EscrowStatus = "RELEASED"
	EscrowRefunded EscrowStatus = "REFUNDED"
	EscrowDisputed EscrowStatus = "DISPUTED"
)

// Settleable reports whether release or refund may start from s.
func (s EscrowStatus) Settleable() bool {
	return s == EscrowHeld || s == EscrowDisputed
}

// Terminal reports whether no further transition is possible.
func (s EscrowStatus) Terminal() bool {
	return s == EscrowReleased || s == EscrowRefunded
}

// Escrow holds a transaction's amount until it is released or refunded.
type Escrow struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	TransactionID uint            `gorm:"uniqueIndex;not null" json:"transaction_id"`
	ClientID      uint            `gorm:"index;not null" json:"client_id"`
	FreelancerID  uint            `gorm:"index;not null" json:"freelancer_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Status        EscrowStatus    `gorm:"size:10;not null;default:'HELD'" json:"status"`
	ReleasedAt    *time.Time      `json:"released_at,omitempty"`
	RefundedAt    *time.Time      `json:"refunded_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (e *Escrow) IsParty(userID uint) bool {
	return e.ClientID == userID || e.FreelancerID == userID
}
