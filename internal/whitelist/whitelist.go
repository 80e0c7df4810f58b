// Package whitelist maintains the set of recipients exempt from the daily
// limit. Changes are proposed by the owner and confirmed or cancelled by a
// controller; only the very first addition bypasses that protocol.
package whitelist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Mohsinsiddi/w3vault/internal/control"
	"github.com/Mohsinsiddi/w3vault/internal/errs"
	"github.com/Mohsinsiddi/w3vault/internal/events"
	"github.com/Mohsinsiddi/w3vault/internal/pending"
	"github.com/ethereum/go-ethereum/common"
)

// MaxBatch caps the addresses in one staged addition or removal.
const MaxBatch = 20

// Errors.
var (
	ErrBatchTooLarge = fmt.Errorf("%w: more than %d addresses in one batch", errs.ErrInvalidArgument, MaxBatch)
	ErrEmptyBatch    = fmt.Errorf("%w: pending batch is empty", errs.ErrProtocolState)
)

// List is the whitelist with its two pending slots.
type List struct {
	acl         control.Authorizer
	members     map[common.Address]struct{}
	additions   pending.Slot[[]common.Address]
	removals    pending.Slot[[]common.Address]
	initialized bool
}

// New creates an empty, uninitialized whitelist whose role checks go to acl.
func New(acl control.Authorizer) *List {
	return &List{acl: acl, members: make(map[common.Address]struct{})}
}

// Bind sets the authorizer; used after decoding a persisted list.
func (l *List) Bind(acl control.Authorizer) { l.acl = acl }

// IsWhitelisted reports whether addr is exempt from the daily limit.
func (l *List) IsWhitelisted(addr common.Address) bool {
	_, ok := l.members[addr]
	return ok
}

// Members returns the whitelisted addresses sorted by address bytes.
func (l *List) Members() []common.Address {
	out := make([]common.Address, 0, len(l.members))
	for a := range l.members {
		out = append(out, a)
	}
	sortAddrs(out)
	return out
}

// Initialized reports whether the bootstrap addition already happened.
func (l *List) Initialized() bool { return l.initialized }

// PendingAddition returns the staged addition batch, if any.
func (l *List) PendingAddition() ([]common.Address, bool) { return l.additions.Pending() }

// PendingRemoval returns the staged removal batch, if any.
func (l *List) PendingRemoval() ([]common.Address, bool) { return l.removals.Pending() }

// Add proposes addrs for addition. The first call ever applies immediately
// and returns the WhitelistAddition event; every later call stages the batch
// for a controller and returns a nil event.
func (l *List) Add(caller common.Address, addrs []common.Address) (*events.Event, error) {
	if err := l.acl.OnlyOwner(caller); err != nil {
		return nil, err
	}
	if !l.initialized {
		l.insert(addrs)
		l.initialized = true
		ev := events.NewWhitelistAddition(addrs)
		return &ev, nil
	}
	if l.additions.Submitted() {
		return nil, fmt.Errorf("whitelist addition: %w", pending.ErrAlreadySubmitted)
	}
	if len(addrs) > MaxBatch {
		return nil, ErrBatchTooLarge
	}
	return nil, l.additions.Submit(slices.Clone(addrs))
}

// ConfirmAdd applies the staged addition batch.
func (l *List) ConfirmAdd(caller common.Address) (*events.Event, error) {
	if err := l.acl.OnlyController(caller); err != nil {
		return nil, err
	}
	batch, ok := l.additions.Pending()
	if !ok {
		return nil, fmt.Errorf("whitelist addition: %w", pending.ErrNothingPending)
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("whitelist addition: %w", ErrEmptyBatch)
	}
	batch, _ = l.additions.Confirm()
	l.insert(batch)
	ev := events.NewWhitelistAddition(batch)
	return &ev, nil
}

// CancelAdd discards the staged addition batch, if any.
func (l *List) CancelAdd(caller common.Address) error {
	if err := l.acl.OnlyController(caller); err != nil {
		return err
	}
	l.additions.Cancel()
	return nil
}

// Remove stages addrs for removal. Removal never bypasses confirmation.
func (l *List) Remove(caller common.Address, addrs []common.Address) error {
	if err := l.acl.OnlyOwner(caller); err != nil {
		return err
	}
	if l.removals.Submitted() {
		return fmt.Errorf("whitelist removal: %w", pending.ErrAlreadySubmitted)
	}
	if len(addrs) > MaxBatch {
		return ErrBatchTooLarge
	}
	return l.removals.Submit(slices.Clone(addrs))
}

// ConfirmRemove applies the staged removal batch.
func (l *List) ConfirmRemove(caller common.Address) (*events.Event, error) {
	if err := l.acl.OnlyController(caller); err != nil {
		return nil, err
	}
	batch, ok := l.removals.Pending()
	if !ok {
		return nil, fmt.Errorf("whitelist removal: %w", pending.ErrNothingPending)
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("whitelist removal: %w", ErrEmptyBatch)
	}
	batch, _ = l.removals.Confirm()
	for _, a := range batch {
		delete(l.members, a)
	}
	ev := events.NewWhitelistRemoval(batch)
	return &ev, nil
}

// CancelRemove discards the staged removal batch, if any.
func (l *List) CancelRemove(caller common.Address) error {
	if err := l.acl.OnlyController(caller); err != nil {
		return err
	}
	l.removals.Cancel()
	return nil
}

// Copy returns a deep copy bound to acl.
func (l *List) Copy(acl control.Authorizer) *List {
	cp := New(acl)
	cp.insert(l.Members())
	cp.additions = l.additions
	cp.removals = l.removals
	cp.initialized = l.initialized
	return cp
}

func (l *List) insert(addrs []common.Address) {
	for _, a := range addrs {
		l.members[a] = struct{}{}
	}
}

func sortAddrs(a []common.Address) {
	slices.SortFunc(a, func(x, y common.Address) int { return bytes.Compare(x[:], y[:]) })
}

type listJSON struct {
	Members     []common.Address               `json:"members"`
	Additions   pending.Slot[[]common.Address] `json:"additions"`
	Removals    pending.Slot[[]common.Address] `json:"removals"`
	Initialized bool                           `json:"initialized"`
}

// MarshalJSON implements json.Marshaler.
func (l *List) MarshalJSON() ([]byte, error) {
	return json.Marshal(listJSON{
		Members:     l.Members(),
		Additions:   l.additions,
		Removals:    l.removals,
		Initialized: l.initialized,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The authorizer must be set with
// Bind afterwards.
func (l *List) UnmarshalJSON(data []byte) error {
	var dec listJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	*l = List{acl: l.acl, members: make(map[common.Address]struct{}, len(dec.Members))}
	l.insert(dec.Members)
	l.additions = dec.Additions
	l.removals = dec.Removals
	l.initialized = dec.Initialized
	return nil
}
