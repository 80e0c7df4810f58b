// Package dailylimit tracks the spend budget for recipients outside the
// whitelist: a ceiling, a 24-hour accounting window keyed by ledger time and
// what is left of it. Limit changes after the first go through a pending slot.
package dailylimit

import (
	"encoding/json"
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/control"
	"github.com/Mohsinsiddi/w3vault/internal/errs"
	"github.com/Mohsinsiddi/w3vault/internal/events"
	"github.com/Mohsinsiddi/w3vault/internal/pending"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Period is the length of one accounting window in seconds.
const Period uint64 = 24 * 60 * 60

// Account is the daily-limit state of one vault.
type Account struct {
	acl         control.Authorizer
	limit       uint256.Int
	periodStart uint64
	remaining   uint256.Int
	change      pending.Slot[*uint256.Int]
	initialized bool
}

// New creates an account with a zero limit; nothing can be spent until the
// owner sets one.
func New(acl control.Authorizer) *Account {
	return &Account{acl: acl}
}

// Bind sets the authorizer; used after decoding a persisted account.
func (a *Account) Bind(acl control.Authorizer) { a.acl = acl }

// Limit returns the current ceiling.
func (a *Account) Limit() *uint256.Int { return a.limit.Clone() }

// PeriodStart returns the start of the window currently in effect.
func (a *Account) PeriodStart() uint64 { return a.periodStart }

// Remaining returns the stored budget of the current window without applying
// a pending rollover. Use Available for the spendable amount.
func (a *Account) Remaining() *uint256.Int { return a.remaining.Clone() }

// Initialized reports whether the first SetLimit already happened.
func (a *Account) Initialized() bool { return a.initialized }

// PendingLimit returns the staged limit, if any.
func (a *Account) PendingLimit() (*uint256.Int, bool) {
	v, ok := a.change.Pending()
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// SetLimit proposes amount as the new limit. The first call applies it at
// once, opening a window at now, and returns the SetDailyLimit event; later
// calls stage it for a controller and return a nil event.
func (a *Account) SetLimit(caller common.Address, now uint64, amount *uint256.Int) (*events.Event, error) {
	if err := a.acl.OnlyOwner(caller); err != nil {
		return nil, err
	}
	if !a.initialized {
		a.limit.Set(amount)
		a.remaining.Set(amount)
		a.periodStart = now
		a.initialized = true
		ev := events.NewSetDailyLimit(amount)
		return &ev, nil
	}
	if err := a.change.Submit(amount.Clone()); err != nil {
		return nil, fmt.Errorf("daily limit change: %w", err)
	}
	return nil, nil
}

// ConfirmLimit applies the staged limit. The budget left in the current
// window is left alone; the new limit is used from the next rollover on.
func (a *Account) ConfirmLimit(caller common.Address) (*events.Event, error) {
	if err := a.acl.OnlyController(caller); err != nil {
		return nil, err
	}
	v, err := a.change.Confirm()
	if err != nil {
		return nil, fmt.Errorf("daily limit change: %w", err)
	}
	a.limit.Set(v)
	ev := events.NewSetDailyLimit(v)
	return &ev, nil
}

// CancelLimit discards the staged limit, if any.
func (a *Account) CancelLimit(caller common.Address) error {
	if err := a.acl.OnlyController(caller); err != nil {
		return err
	}
	a.change.Cancel()
	return nil
}

// window computes the period start and remaining budget in effect at now.
// The window advances by whole periods, however many have elapsed.
func (a *Account) window(now uint64) (uint64, *uint256.Int) {
	if now <= a.periodStart || now-a.periodStart <= Period {
		return a.periodStart, a.remaining.Clone()
	}
	elapsed := (now - a.periodStart) / Period
	return a.periodStart + elapsed*Period, a.limit.Clone()
}

// Rollover opens a fresh window if more than one period passed since the
// current one started.
func (a *Account) Rollover(now uint64) {
	start, remaining := a.window(now)
	a.periodStart = start
	a.remaining.Set(remaining)
}

// Available returns what could be spent at now. It does not modify the account.
func (a *Account) Available(now uint64) *uint256.Int {
	_, remaining := a.window(now)
	return remaining
}

// Charge rolls the window over if due and deducts amount from it. When the
// budget is insufficient the account is left untouched.
func (a *Account) Charge(now uint64, amount *uint256.Int) error {
	start, remaining := a.window(now)
	if amount.Gt(remaining) {
		return fmt.Errorf("%w: need %s, %s left in window", errs.ErrInsufficientBudget, amount.Dec(), remaining.Dec())
	}
	a.periodStart = start
	a.remaining.Sub(remaining, amount)
	return nil
}

// Copy returns a deep copy bound to acl.
func (a *Account) Copy(acl control.Authorizer) *Account {
	cp := *a
	cp.acl = acl
	return &cp
}

type accountJSON struct {
	Limit       *uint256.Int               `json:"limit"`
	PeriodStart uint64                     `json:"period_start"`
	Remaining   *uint256.Int               `json:"remaining"`
	Change      pending.Slot[*uint256.Int] `json:"change"`
	Initialized bool                       `json:"initialized"`
}

// MarshalJSON implements json.Marshaler.
func (a *Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(&accountJSON{
		Limit:       a.limit.Clone(),
		PeriodStart: a.periodStart,
		Remaining:   a.remaining.Clone(),
		Change:      a.change,
		Initialized: a.initialized,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The authorizer must be set with
// Bind afterwards.
func (a *Account) UnmarshalJSON(data []byte) error {
	var dec accountJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	*a = Account{acl: a.acl, periodStart: dec.PeriodStart, change: dec.Change, initialized: dec.Initialized}
	if dec.Limit != nil {
		a.limit.Set(dec.Limit)
	}
	if dec.Remaining != nil {
		a.remaining.Set(dec.Remaining)
	}
	return nil
}
