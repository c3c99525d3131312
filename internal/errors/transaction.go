package errors

var (
	ErrTransactionNotFound = &DomainError{
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
	}
	ErrNotVerifiedClient = &DomainError{
		Code:    "NOT_VERIFIED_CLIENT",
		Message: "only verified clients can create transactions",
	}
	ErrInvalidFreelancer = &DomainError{
		Code:    "INVALID_FREELANCER",
		Message: "recipient must be a freelancer other than the client",
	}
	ErrInvalidTransactionStatus = &DomainError{
		Code:    "INVALID_TRANSACTION_STATUS",
		Message: "invalid transaction status transition",
	}
	ErrSettleThroughEscrow = &DomainError{
		Code:    "SETTLE_THROUGH_ESCROW",
		Message: "transaction has a live escrow and must be settled through it",
	}
)
