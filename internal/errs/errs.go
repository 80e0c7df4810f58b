// Package errs defines the error kinds every vault operation can fail with.
//
// Component packages wrap these sentinels with narrower errors of their own,
// so callers can classify any failure with errors.Is:
//
//	if errors.Is(err, errs.ErrInsufficientBudget) { ... }
package errs

import "errors"

var (
	// ErrUnauthorized: the caller does not hold the role the operation needs.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidArgument: zero amount, oversized batch, zero oracle rate, overflow.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrProtocolState: submit while submitted, confirm with nothing pending.
	ErrProtocolState = errors.New("invalid protocol state")

	// ErrInsufficientBudget: the spend exceeds what is left of the daily limit.
	ErrInsufficientBudget = errors.New("insufficient daily budget")

	// ErrExternalCall: a token transfer reported false or a native send failed.
	ErrExternalCall = errors.New("external call failed")
)

// Kind returns the taxonomy sentinel err belongs to, or nil if it belongs to none.
func Kind(err error) error {
	for _, k := range []error{
		ErrUnauthorized,
		ErrInvalidArgument,
		ErrProtocolState,
		ErrInsufficientBudget,
		ErrExternalCall,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
