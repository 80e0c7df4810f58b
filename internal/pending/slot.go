// Package pending implements the one-proposal-in-flight staging slot behind
// every two-party administrative change (whitelist add/remove, limit change).
//
// A slot is EMPTY or SUBMITTED. Submit moves EMPTY to SUBMITTED, Confirm hands
// the value back to the owning component and empties the slot, Cancel empties
// it unconditionally. Who may call which transition is decided by the owner
// of the slot, never by the slot itself. Nothing expires.
package pending

import (
	"encoding/json"
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/errs"
)

// Errors.
var (
	ErrAlreadySubmitted = fmt.Errorf("%w: a proposal is already pending", errs.ErrProtocolState)
	ErrNothingPending   = fmt.Errorf("%w: no proposal is pending", errs.ErrProtocolState)
)

// Slot stages at most one proposed value of type T.
// Values handed to Submit must not be mutated afterwards by the caller.
type Slot[T any] struct {
	proposed  T
	submitted bool
}

// Submitted reports whether a proposal is in flight.
func (s *Slot[T]) Submitted() bool { return s.submitted }

// Pending returns the proposed value and whether one is in flight.
func (s *Slot[T]) Pending() (T, bool) {
	if !s.submitted {
		var zero T
		return zero, false
	}
	return s.proposed, true
}

// Submit stages v. It fails if a proposal is already in flight; there is no
// overwrite and no queueing.
func (s *Slot[T]) Submit(v T) error {
	if s.submitted {
		return ErrAlreadySubmitted
	}
	s.proposed = v
	s.submitted = true
	return nil
}

// Confirm empties the slot and returns the staged value for the caller to
// apply to its live state.
func (s *Slot[T]) Confirm() (T, error) {
	if !s.submitted {
		var zero T
		return zero, ErrNothingPending
	}
	v := s.proposed
	s.reset()
	return v, nil
}

// Cancel discards any staged value. Cancelling an empty slot is a no-op.
func (s *Slot[T]) Cancel() {
	s.reset()
}

func (s *Slot[T]) reset() {
	var zero T
	s.proposed = zero
	s.submitted = false
}

type slotJSON[T any] struct {
	Proposed  T    `json:"proposed"`
	Submitted bool `json:"submitted"`
}

// MarshalJSON implements json.Marshaler.
func (s Slot[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(slotJSON[T]{Proposed: s.proposed, Submitted: s.submitted})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Slot[T]) UnmarshalJSON(data []byte) error {
	var dec slotJSON[T]
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	s.proposed, s.submitted = dec.Proposed, dec.Submitted
	return nil
}
