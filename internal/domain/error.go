package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")

	// Redemption errors
	ErrCodeNotFound        = errors.New("code not found")
	ErrCodeAlreadyUsed     = errors.New("code already used")
	ErrCodeExpired         = errors.New("code has expired")
	ErrCodePackageMismatch = errors.New("code is bound to a different package")
	ErrGradeMismatch       = errors.New("grade does not match")
	ErrPackageInactive     = errors.New("package is not active")
	ErrAlreadyEntitled     = errors.New("user already has an active entitlement for this package")

	// Wallet errors
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// ErrRedemptionConflict signals a lost conditional write: another request
	// consumed the same code or drained the same wallet first. A retry would
	// almost certainly fail the same way, so callers must not retry.
	ErrRedemptionConflict = errors.New("lost a concurrent redemption")

	// ErrInconsistentState signals that the second write of a two-step sequence
	// failed and the compensating write failed too. The stores disagree and an
	// operator has to reconcile manually.
	ErrInconsistentState = errors.New("stores left inconsistent; manual reconciliation required")

	// Infra errors
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrRateLimited        = errors.New("too many attempts")
)
