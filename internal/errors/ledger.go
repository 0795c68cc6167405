package errors

var (
	ErrInvalidInput = &DomainError{
		Code:    "INVALID_INPUT",
		Message: "invalid input",
	}
	ErrInsufficientFunds = &DomainError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient wallet balance",
	}
	ErrInsufficientHoldings = &DomainError{
		Code:    "INSUFFICIENT_HOLDINGS",
		Message: "insufficient holdings",
	}
	ErrUnauthorized = &DomainError{
		Code:    "UNAUTHORIZED",
		Message: "operation requires elevated privileges",
	}
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrBonusNotReady = &DomainError{
		Code:    "BONUS_NOT_READY",
		Message: "daily bonus already claimed",
	}
	ErrStalePriceData = &DomainError{
		Code:    "STALE_PRICE_DATA",
		Message: "no price data available",
	}
	// ErrConsistency marks a balance change that is not backed by a trade
	// record. It must always surface as an operator alert, never as an
	// ordinary rejection.
	ErrConsistency = &DomainError{
		Code:    "CONSISTENCY_ERROR",
		Message: "ledger consistency error",
	}
)
