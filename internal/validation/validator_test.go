package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type amountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"money"`
	Reason string          `json:"reason" validate:"required"`
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"password"`
	Role     string `json:"role" validate:"oneof=client freelancer"`
}

func TestStructMoney(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{"valid", "10.50", false},
		{"zero", "0", true},
		{"negative", "-5", true},
		{"three decimals", "1.005", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(amountRequest{Amount: decimal.RequireFromString(tt.amount), Reason: "top up"})
			if tt.wantErr {
				assert.EqualError(t, err, "amount must be a positive amount with at most 2 decimal places")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStructRequiredUsesJSONName(t *testing.T) {
	err := Struct(amountRequest{Amount: decimal.NewFromInt(5)})
	assert.EqualError(t, err, "reason is required")
}

func TestStructSignup(t *testing.T) {
	assert.NoError(t, Struct(signupRequest{Email: "a@b.io", Password: "Passw0rd!", Role: "client"}))

	err := Struct(signupRequest{Email: "a@b.io", Password: "password", Role: "client"})
	assert.ErrorContains(t, err, "password must be at least 8 characters")

	err = Struct(signupRequest{Email: "a@b.io", Password: "Passw0rd!", Role: "staff"})
	assert.EqualError(t, err, "role must be one of [client freelancer]")
}

func TestStrongPassword(t *testing.T) {
	assert.True(t, StrongPassword("Abcdef1!"))
	assert.False(t, StrongPassword("Abc1!"))
	assert.False(t, StrongPassword("abcdefg1!"))
	assert.False(t, StrongPassword("Abcdefgh!"))
	assert.True(t, HasSpecialChar("x?y"))
	assert.False(t, HasSpecialChar("xy"))
}
