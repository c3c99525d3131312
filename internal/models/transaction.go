package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
	TransactionRefunded  TransactionStatus = "REFUNDED"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionCompleted, TransactionFailed, TransactionRefunded:
		return true
	}
	return false
}

// Settled reports whether money already moved for this status.
func (s TransactionStatus) Settled() bool {
	return s == TransactionCompleted || s == TransactionRefunded
}

// CanTransitionTo reports whether a transaction in s may move to next.
// Settled transactions never go back to PENDING or FAILED.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if !next.Valid() {
		return false
	}
	if s.Settled() && (next == TransactionPending || next == TransactionFailed) {
		return false
	}
	return true
}

// Transaction is a payment from a client to a freelancer.
type Transaction struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	ClientID     uint              `gorm:"index;not null" json:"client_id"`
	FreelancerID uint              `gorm:"index;not null" json:"freelancer_id"`
	Amount       decimal.Decimal   `gorm:"type:numeric(20,2);not null" json:"amount"`
	Description  string            `json:"description"`
	Reference    string            `gorm:"uniqueIndex;size:36;not null" json:"reference"`
	Status       TransactionStatus `gorm:"size:10;not null;default:'PENDING'" json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (t *Transaction) IsParty(userID uint) bool {
	return t.ClientID == userID || t.FreelancerID == userID
}
