package bank

import "errors"

// Transaction-level failures. Each one is recorded in the tally and the
// account log before it is returned; the worker moves on to the next entry.
var (
	// ErrInvalidAmount is returned for a negative amount.
	ErrInvalidAmount = errors.New("amount must be >= 0")

	// ErrInsufficientFunds is returned when the balance does not strictly exceed the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSameAccount is returned for a transfer whose source and destination match.
	ErrSameAccount = errors.New("source and destination are the same account")

	// ErrLogUnavailable is returned when an account log cannot be read.
	ErrLogUnavailable = errors.New("account log unavailable")

	// ErrUnknownAccount is returned for an account ID outside 0..N-1.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrUnknownMode is returned for a ledger entry with an unrecognised mode.
	ErrUnknownMode = errors.New("unknown transaction mode")
)

// ErrClosed is returned by operations on a bank after Close. It is not recorded.
var ErrClosed = errors.New("bank is closed")
