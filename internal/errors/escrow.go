package errors

var (
	ErrEscrowNotFound = &DomainError{
		Code:    "ESCROW_NOT_FOUND",
		Message: "escrow not found",
	}
	ErrEscrowExists = &DomainError{
		Code:    "ESCROW_EXISTS",
		Message: "escrow already exists for this transaction",
	}
	ErrInvalidEscrowState = &DomainError{
		Code:    "INVALID_ESCROW_STATE",
		Message: "escrow is not in a state that allows this operation",
	}
	ErrDisputeNotFound = &DomainError{
		Code:    "DISPUTE_NOT_FOUND",
		Message: "dispute not found",
	}
	ErrInvalidDisputeState = &DomainError{
		Code:    "INVALID_DISPUTE_STATE",
		Message: "dispute is not open",
	}
	ErrDisputeReasonRequired = &DomainError{
		Code:    "DISPUTE_REASON_REQUIRED",
		Message: "a reason is required to open a dispute",
	}
	ErrInvalidResolution = &DomainError{
		Code:    "INVALID_RESOLUTION",
		Message: "resolution must be RELEASE or REFUND",
	}
	ErrEscrowBusy = &DomainError{
		Code:    "ESCROW_BUSY",
		Message: "escrow is being settled by another request",
	}
)
