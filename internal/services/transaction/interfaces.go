package transaction

import (
	"context"

	"freelink/internal/models"

	"github.com/shopspring/decimal"
)

// Service manages client-to-freelancer payment transactions.
type Service interface {
	Create(ctx context.Context, clientID, freelancerID uint, amount decimal.Decimal, description string) (*models.Transaction, error)
	Get(ctx context.Context, actorID, id uint) (*models.Transaction, error)
	// ListForUser returns the transactions the actor takes part in, or
	// every transaction for staff.
	ListForUser(ctx context.Context, actorID uint, limit, offset int) ([]models.Transaction, error)
	UpdateStatus(ctx context.Context, actorID, id uint, status models.TransactionStatus) (*models.Transaction, error)
}
