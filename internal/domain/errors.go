package domain

import "errors"

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrIneligibleAccount      = errors.New("account is not eligible to transact")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrReceiverNotFound       = errors.New("receiver not found")
	ErrReceiverIneligible     = errors.New("receiver cannot receive funds")
	ErrSelfTransferNotAllowed = errors.New("cannot transfer to yourself")
	ErrDuplicateAccount       = errors.New("owner already has an account")
	ErrAccountNotFound        = errors.New("account not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrAlreadySuspended       = errors.New("account is already suspended")
	ErrInvalidFeeRate         = errors.New("fee rate must be between 0 and 100")

	// ErrConcurrencyConflict is retryable: a lock wait timed out or the
	// database aborted the unit to resolve a conflict.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")

	// ErrInvariantViolation means a terminal transaction was about to be
	// changed. It signals a bug, never a user error.
	ErrInvariantViolation = errors.New("ledger invariant violation")
)

// IneligibleError carries the human readable reason an account was refused
type IneligibleError struct {
	Reason string
	Err    error // ErrIneligibleAccount or ErrReceiverIneligible
}

func (e *IneligibleError) Error() string {
	return e.Err.Error() + ": " + e.Reason
}

func (e *IneligibleError) Unwrap() error {
	return e.Err
}

// Ineligible wraps reason as an ErrIneligibleAccount
func Ineligible(reason string) error {
	return &IneligibleError{Reason: reason, Err: ErrIneligibleAccount}
}

// ReceiverIneligible wraps reason as an ErrReceiverIneligible
func ReceiverIneligible(reason string) error {
	return &IneligibleError{Reason: reason, Err: ErrReceiverIneligible}
}
