package escrow

import (
	"context"

	"freelink/internal/models"
)

// Service runs the escrow state machine:
//
//	HELD -> RELEASED | REFUNDED | DISPUTED
//	DISPUTED -> RELEASED | REFUNDED (dispute resolution) | HELD (dispute cancelled)
//
// RELEASED and REFUNDED are terminal.
type Service interface {
	// Create moves the transaction amount from the client's balance into
	// held funds and opens a HELD escrow.
	Create(ctx context.Context, actorID, transactionID uint) (*models.Escrow, error)
	Get(ctx context.Context, actorID, id uint) (*models.Escrow, error)
	ListForUser(ctx context.Context, actorID uint, limit, offset int) ([]models.Escrow, error)

	// Release pays the freelancer. Allowed to the client or staff on a HELD
	// escrow; a DISPUTED escrow settles only through ResolveDispute.
	Release(ctx context.Context, actorID, escrowID uint) (*models.Escrow, error)
	// Refund returns the funds to the client. Allowed to the freelancer or
	// staff on a HELD escrow; a DISPUTED escrow settles only through
	// ResolveDispute.
	Refund(ctx context.Context, actorID, escrowID uint) (*models.Escrow, error)

	// Dispute opens a dispute on a HELD escrow. Only a party may do so.
	Dispute(ctx context.Context, actorID, escrowID uint, reason string) (*models.EscrowDispute, error)
	// ResolveDispute settles an OPEN dispute by releasing or refunding. Staff only.
	ResolveDispute(ctx context.Context, actorID, disputeID uint, resolution models.Resolution, notes string) (*models.EscrowDispute, error)
	// CancelDispute withdraws an OPEN dispute and puts the escrow back on HELD.
	// Only the party who raised it may cancel.
	CancelDispute(ctx context.Context, actorID, disputeID uint) (*models.EscrowDispute, error)
	GetDispute(ctx context.Context, actorID, disputeID uint) (*models.EscrowDispute, error)
	// EscrowDisputes is the dispute history of one escrow, for its parties and staff.
	EscrowDisputes(ctx context.Context, actorID, escrowID uint) ([]models.EscrowDispute, error)
	// ListDisputes returns disputes by status, or all when status is empty. Staff only.
	ListDisputes(ctx context.Context, actorID uint, status models.DisputeStatus) ([]models.EscrowDispute, error)
}
