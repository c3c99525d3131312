package funding

import (
	"context"
	"testing"

	apperrors "freelink/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"
	"go.uber.org/zap"
)

func newTestGateway(create func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)) *StripeGateway {
	return &StripeGateway{logger: zap.NewNop(), create: create}
}

func TestStripeChargeSucceeded(t *testing.T) {
	var got *stripe.PaymentIntentParams
	g := newTestGateway(func(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		got = p
		return &stripe.PaymentIntent{ID: "pi_123", Status: stripe.PaymentIntentStatusSucceeded}, nil
	})

	charge, err := g.Charge(context.Background(), ChargeRequest{
		UserID:         4,
		Amount:         decimal.RequireFromString("12.34"),
		Currency:       "USD",
		PaymentMethod:  "pm_card_visa",
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", charge.ID)

	require.NotNil(t, got)
	assert.Equal(t, int64(1234), *got.Amount)
	assert.Equal(t, "usd", *got.Currency)
	assert.True(t, *got.Confirm)
	assert.Equal(t, "fund:4:key-1", *got.IdempotencyKey)
}

func TestStripeChargeNotSucceeded(t *testing.T) {
	g := newTestGateway(func(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return &stripe.PaymentIntent{ID: "pi_9", Status: stripe.PaymentIntentStatusRequiresAction}, nil
	})

	_, err := g.Charge(context.Background(), ChargeRequest{Amount: decimal.NewFromInt(5), Currency: "USD", PaymentMethod: "pm"})
	assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)
}

func TestStripeCardError(t *testing.T) {
	g := newTestGateway(func(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return nil, &stripe.Error{Type: stripe.ErrorTypeCard, Code: stripe.ErrorCodeCardDeclined, Msg: "Your card was declined."}
	})

	_, err := g.Charge(context.Background(), ChargeRequest{Amount: decimal.NewFromInt(5), Currency: "USD", PaymentMethod: "pm"})
	assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)
}

func TestStripeRequiresPaymentMethod(t *testing.T) {
	g := newTestGateway(nil)

	_, err := g.Charge(context.Background(), ChargeRequest{Amount: decimal.NewFromInt(5), Currency: "USD"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStripeChargeKeysAreScopedPerUser(t *testing.T) {
	var keys []string
	g := newTestGateway(func(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		keys = append(keys, *p.IdempotencyKey)
		return &stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusSucceeded}, nil
	})

	for _, userID := range []uint{1, 2} {
		_, err := g.Charge(context.Background(), ChargeRequest{
			UserID:         userID,
			Amount:         decimal.NewFromInt(5),
			Currency:       "USD",
			PaymentMethod:  "pm_card_visa",
			IdempotencyKey: "same-key",
		})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"fund:1:same-key", "fund:2:same-key"}, keys)
}

func TestStripePayout(t *testing.T) {
	var got *stripe.TransferParams
	g := &StripeGateway{logger: zap.NewNop(), transfer: func(p *stripe.TransferParams) (*stripe.Transfer, error) {
		got = p
		return &stripe.Transfer{ID: "tr_1"}, nil
	}}

	payout, err := g.Payout(context.Background(), PayoutRequest{
		UserID:         4,
		Amount:         decimal.RequireFromString("40.50"),
		Currency:       "USD",
		Destination:    "acct_123",
		Reference:      "payout-key-1",
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "tr_1", payout.ID)

	require.NotNil(t, got)
	assert.Equal(t, int64(4050), *got.Amount)
	assert.Equal(t, "usd", *got.Currency)
	assert.Equal(t, "acct_123", *got.Destination)
	assert.Equal(t, "payout:4:key-1", *got.IdempotencyKey)
	assert.Equal(t, "payout-key-1", got.Metadata["reference"])
}

func TestStripePayoutRejected(t *testing.T) {
	g := &StripeGateway{logger: zap.NewNop(), transfer: func(p *stripe.TransferParams) (*stripe.Transfer, error) {
		return nil, &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, Msg: "Insufficient funds in Stripe account."}
	}}

	_, err := g.Payout(context.Background(), PayoutRequest{Amount: decimal.NewFromInt(5), Currency: "USD", Destination: "acct_1"})
	assert.ErrorIs(t, err, apperrors.ErrPayoutFailed)

	_, err = g.Payout(context.Background(), PayoutRequest{Amount: decimal.NewFromInt(5), Currency: "USD"})
	assert.ErrorIs(t, err, apperrors.ErrPayoutAccountRequired)
}

func TestVerifyPayoutAccount(t *testing.T) {
	accounts := map[string]*stripe.Account{
		"acct_ready":   {ID: "acct_ready", PayoutsEnabled: true},
		"acct_pending": {ID: "acct_pending"},
	}
	g := &StripeGateway{logger: zap.NewNop(), getAccount: func(id string, _ *stripe.AccountParams) (*stripe.Account, error) {
		if acct, ok := accounts[id]; ok {
			return acct, nil
		}
		return nil, &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, Msg: "No such account"}
	}}
	ctx := context.Background()

	assert.NoError(t, g.VerifyPayoutAccount(ctx, "acct_ready"))
	assert.ErrorIs(t, g.VerifyPayoutAccount(ctx, "acct_pending"), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, g.VerifyPayoutAccount(ctx, "acct_missing"), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, g.VerifyPayoutAccount(ctx, "12345678"), apperrors.ErrInvalidInput)
}
