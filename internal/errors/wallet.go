package errors

var (
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient wallet balance",
	}
	ErrInsufficientHeld = &DomainError{
		Code:    "INSUFFICIENT_HELD",
		Message: "insufficient held funds",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
	}
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrWalletExists = &DomainError{
		Code:    "WALLET_EXISTS",
		Message: "wallet already exists",
	}
	ErrPaymentDeclined = &DomainError{
		Code:    "PAYMENT_DECLINED",
		Message: "payment was declined",
	}
	ErrPaymentUnavailable = &DomainError{
		Code:    "PAYMENT_UNAVAILABLE",
		Message: "payment gateway not configured",
	}
	ErrPayoutFailed = &DomainError{
		Code:    "PAYOUT_FAILED",
		Message: "payout was rejected by the payment gateway",
	}
	ErrPayoutAccountRequired = &DomainError{
		Code:    "PAYOUT_ACCOUNT_REQUIRED",
		Message: "wallet has no payout account",
	}
)
