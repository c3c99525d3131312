package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryCredit EntryType = "CREDIT"
	EntryDebit  EntryType = "DEBIT"
	EntryHold   EntryType = "HOLD"
	EntryUnhold EntryType = "UNHOLD"
)

// WalletEntry is one line of the append-only wallet ledger.
type WalletEntry struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	WalletID  uint            `gorm:"index;not null;uniqueIndex:idx_wallet_entries_external,priority:1" json:"wallet_id"`
	Type      EntryType       `gorm:"size:10;not null" json:"type"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Reason    string          `gorm:"size:255" json:"reason"`
	Reference string          `gorm:"size:100;index" json:"reference,omitempty"`

	// ExternalReference is the payment gateway's id for money that entered
	// or left through it. A wallet never carries the same id twice.
	ExternalReference string `gorm:"size:100;uniqueIndex:idx_wallet_entries_external,priority:2,where:external_reference <> ''" json:"external_reference,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
