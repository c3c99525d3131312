// Package funding moves money between wallets and the outside world: card
// charges top wallets up and transfers to connected accounts pay them out.
package funding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "freelink/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/account"
	"github.com/stripe/stripe-go/v72/paymentintent"
	"github.com/stripe/stripe-go/v72/transfer"
	"go.uber.org/zap"
)

type ChargeRequest struct {
	UserID         uint
	Amount         decimal.Decimal
	Currency       string
	PaymentMethod  string
	IdempotencyKey string
}

type Charge struct {
	ID     string
	Status string
}

type PayoutRequest struct {
	UserID         uint
	Amount         decimal.Decimal
	Currency       string
	Destination    string
	Reference      string
	IdempotencyKey string
}

type Payout struct {
	ID string
}

// Gateway charges payment methods and pays out to connected accounts.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
	Payout(ctx context.Context, req PayoutRequest) (*Payout, error)
	// VerifyPayoutAccount fails unless accountID can receive payouts.
	VerifyPayoutAccount(ctx context.Context, accountID string) error
}

// StripeGateway confirms a PaymentIntent synchronously for charges and
// sends Connect transfers for payouts.
type StripeGateway struct {
	logger     *zap.Logger
	create     func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	transfer   func(params *stripe.TransferParams) (*stripe.Transfer, error)
	getAccount func(id string, params *stripe.AccountParams) (*stripe.Account, error)
}

func NewStripeGateway(secretKey string, logger *zap.Logger) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{
		logger:     logger,
		create:     paymentintent.New,
		transfer:   transfer.New,
		getAccount: account.GetByID,
	}
}

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, apperrors.ErrInvalidInput.Withf("payment method is required")
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount.Shift(2).IntPart()),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod:      stripe.String(req.PaymentMethod),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
	}
	params.Context = ctx
	params.AddMetadata("user_id", fmt.Sprint(req.UserID))
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(fmt.Sprintf("fund:%d:%s", req.UserID, req.IdempotencyKey))
	}

	pi, err := g.create(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			g.logger.Info("card declined",
				zap.Uint("user_id", req.UserID),
				zap.String("code", string(stripeErr.Code)),
			)
			return nil, apperrors.ErrPaymentDeclined.Withf("%s", stripeErr.Msg)
		}
		return nil, fmt.Errorf("stripe charge failed: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, apperrors.ErrPaymentDeclined.Withf("payment intent %s is %s", pi.ID, pi.Status)
	}

	return &Charge{ID: pi.ID, Status: string(pi.Status)}, nil
}

func (g *StripeGateway) Payout(ctx context.Context, req PayoutRequest) (*Payout, error) {
	if strings.TrimSpace(req.Destination) == "" {
		return nil, apperrors.ErrPayoutAccountRequired
	}

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(req.Amount.Shift(2).IntPart()),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Destination: stripe.String(req.Destination),
	}
	params.Context = ctx
	params.AddMetadata("user_id", fmt.Sprint(req.UserID))
	params.AddMetadata("reference", req.Reference)
	params.AddMetadata("reason", "User Withdrawal")
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(fmt.Sprintf("payout:%d:%s", req.UserID, req.IdempotencyKey))
	}

	tr, err := g.transfer(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeInvalidRequest {
			g.logger.Warn("payout rejected",
				zap.Uint("user_id", req.UserID),
				zap.String("destination", req.Destination),
				zap.String("code", string(stripeErr.Code)),
			)
			return nil, apperrors.ErrPayoutFailed.Withf("%s", stripeErr.Msg)
		}
		return nil, fmt.Errorf("stripe transfer failed: %w", err)
	}

	return &Payout{ID: tr.ID}, nil
}

func (g *StripeGateway) VerifyPayoutAccount(ctx context.Context, accountID string) error {
	if !strings.HasPrefix(accountID, "acct_") {
		return apperrors.ErrInvalidInput.Withf("payout account must be a connected account id")
	}

	params := &stripe.AccountParams{}
	params.Context = ctx
	acct, err := g.getAccount(accountID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeInvalidRequest {
			return apperrors.ErrInvalidInput.Withf("%s", stripeErr.Msg)
		}
		return fmt.Errorf("stripe account lookup failed: %w", err)
	}
	if !acct.PayoutsEnabled {
		return apperrors.ErrInvalidInput.Withf("account %s cannot receive payouts yet", accountID)
	}
	return nil
}
