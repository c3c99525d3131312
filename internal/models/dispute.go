package models

import (
	"time"
)

type DisputeStatus string

const (
	DisputeOpen      DisputeStatus = "OPEN"
	DisputeResolved  DisputeStatus = "RESOLVED"
	DisputeCancelled DisputeStatus = "CANCELLED"
)

func (s DisputeStatus) Valid() bool {
	return s == DisputeOpen || s == DisputeResolved || s == DisputeCancelled
}

type Resolution string

const (
	ResolutionRelease Resolution = "RELEASE"
	ResolutionRefund  Resolution = "REFUND"
)

func (r Resolution) Valid() bool {
	return r == ResolutionRelease || r == ResolutionRefund
}

// EscrowDispute is a party's objection to an escrow, settled by staff.
type EscrowDispute struct {
	ID           uint          `gorm:"primarykey" json:"id"`
	EscrowID     uint          `gorm:"index;not null" json:"escrow_id"`
	RaisedByID   uint          `gorm:"not null" json:"raised_by"`
	Reason       string        `gorm:"type:text;not null" json:"reason"`
	Status       DisputeStatus `gorm:"size:10;not null;default:'OPEN'" json:"status"`
	Resolution   Resolution    `gorm:"size:10" json:"resolution,omitempty"`
	ResolvedByID *uint         `json:"resolved_by,omitempty"`
	Notes        string        `gorm:"type:text" json:"notes,omitempty"`
	ResolvedAt   *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
