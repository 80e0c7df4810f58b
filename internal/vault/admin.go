package vault

import (
	"context"

	"github.com/Mohsinsiddi/w3vault/internal/events"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// AddController adds target to the controller set. Controllers only.
func (v *Vault) AddController(ctx context.Context, caller, target common.Address) error {
	err := v.apply(ctx, "addController", func(st *State, _ uint64) ([]events.Event, error) {
		return nil, st.Access.AddController(caller, target)
	})
	if err == nil {
		v.log.Info("Controller added", "controller", target, "by", caller)
	}
	return err
}

// RemoveController removes target from the controller set. Controllers only.
func (v *Vault) RemoveController(ctx context.Context, caller, target common.Address) error {
	err := v.apply(ctx, "removeController", func(st *State, _ uint64) ([]events.Event, error) {
		return nil, st.Access.RemoveController(caller, target)
	})
	if err == nil {
		v.log.Info("Controller removed", "controller", target, "by", caller)
	}
	return err
}

// AddToWhitelist proposes addrs for the whitelist. The very first call
// applies them at once; later ones wait for a controller.
func (v *Vault) AddToWhitelist(ctx context.Context, caller common.Address, addrs []common.Address) error {
	applied := false
	err := v.apply(ctx, "addToWhitelist", func(st *State, _ uint64) ([]events.Event, error) {
		ev, err := st.Whitelist.Add(caller, addrs)
		applied = ev != nil
		return single(ev), err
	})
	if err == nil {
		if applied {
			v.log.Info("Whitelist initialized", "count", len(addrs))
		} else {
			v.log.Info("Whitelist addition submitted", "count", len(addrs))
		}
	}
	return err
}

// ConfirmWhitelistAddition applies the pending addition. Controllers only.
func (v *Vault) ConfirmWhitelistAddition(ctx context.Context, caller common.Address) error {
	err := v.apply(ctx, "confirmWhitelistAddition", func(st *State, _ uint64) ([]events.Event, error) {
		ev, err := st.Whitelist.ConfirmAdd(caller)
		return single(ev), err
	})
	if err == nil {
		v.log.Info("Whitelist addition confirmed", "by", caller)
	}
	return err
}

// CancelWhitelistAddition discards the pending addition. Controllers only.
func (v *Vault) CancelWhitelistAddition(ctx context.Context, caller common.Address) error {
	err := v.apply(ctx, "cancelWhitelistAddition", func(st *State, _ uint64) ([]events.Event, error) {
		return nil, st.Whitelist.CancelAdd(caller)
	})
	if err == nil {
		v.log.Info("Whitelist addition cancelled", "by", caller)
	}
	return err
}

// RemoveFromWhitelist proposes addrs for removal. Owner only; always needs a
// controller to confirm.
func (v *Vault) RemoveFromWhitelist(ctx context.Context, caller common.Address, addrs []common.Address) error {
	err := v.apply(ctx, "removeFromWhitelist", func(st *State, _ uint64) ([]events.Event, error) {
		return nil, st.Whitelist.Remove(caller, addrs)
	})
	if err == nil {
		v.log.Info("Whitelist removal submitted", "count", len(addrs))
	}
	return err
}

// ConfirmWhitelistRemoval applies the pending removal. Controllers only.
func (v *Vault) ConfirmWhitelistRemoval(ctx context.Context, caller common.Address) error {
	err := v.apply(ctx, "confirmWhitelistRemoval", func(st *State, _ uint64) ([]events.Event, error) {
		ev, err := st.Whitelist.ConfirmRemove(caller)
		return single(ev), err
	})
	if err == nil {
		v.log.Info("Whitelist removal confirmed", "by", caller)
	}
	return err
}

// CancelWhitelistRemoval discards the pending removal. Controllers only.
func (v *Vault) CancelWhitelistRemoval(ctx context.Context, caller common.Address) error {
	err := v.apply(ctx, "cancelWhitelistRemoval", func(st *State, _ uint64) ([]events.Event, error) {
		return nil, st.Whitelist.CancelRemove(caller)
	})
	if err == nil {
		v.log.Info("Whitelist removal cancelled", "by", caller)
	}
	return err
}

// SetDailyLimit proposes a new daily limit. The first call applies at once.
func (v *Vault) SetDailyLimit(ctx context.Context, caller common.Address, amount *uint256.Int) error {
	err := v.apply(ctx, "setDailyLimit", func(st *State, now uint64) ([]events.Event, error) {
		ev, err := st.Limit.SetLimit(caller, now, amount)
		return single(ev), err
	})
	if err == nil {
		v.log.Info("Daily limit change", "limit", amount)
	}
	return err
}

// ConfirmDailyLimit applies the pending limit. Controllers only.
func (v *Vault) ConfirmDailyLimit(ctx context.Context, caller common.Address) error {
	err := v.apply(ctx, "confirmDailyLimit", func(st *State, _ uint64) ([]events.Event, error) {
		ev, err := st.Limit.ConfirmLimit(caller)
		return single(ev), err
	})
	if err == nil {
		v.log.Info("Daily limit confirmed", "by", caller)
	}
	return err
}

// CancelDailyLimit discards the pending limit. Controllers only.
func (v *Vault) CancelDailyLimit(ctx context.Context, caller common.Address) error {
	err := v.apply(ctx, "cancelDailyLimit", func(st *State, _ uint64) ([]events.Event, error) {
		return nil, st.Limit.CancelLimit(caller)
	})
	if err == nil {
		v.log.Info("Daily limit change cancelled", "by", caller)
	}
	return err
}

// Reads.

func (v *Vault) read() *State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Snapshot returns a deep copy of the current state.
func (v *Vault) Snapshot() *State { return v.read().Copy() }

// Owner returns the owner identity.
func (v *Vault) Owner() common.Address { return v.read().Access.Owner() }

// Controllers returns the controller set.
func (v *Vault) Controllers() []common.Address { return v.read().Access.Controllers() }

// IsController reports whether addr is a controller.
func (v *Vault) IsController(addr common.Address) bool { return v.read().Access.IsController(addr) }

// IsWhitelisted reports whether addr is exempt from the daily limit.
func (v *Vault) IsWhitelisted(addr common.Address) bool {
	return v.read().Whitelist.IsWhitelisted(addr)
}

// Whitelisted returns the whitelist.
func (v *Vault) Whitelisted() []common.Address { return v.read().Whitelist.Members() }

// PendingAddition returns the staged whitelist addition, if any.
func (v *Vault) PendingAddition() ([]common.Address, bool) {
	return v.read().Whitelist.PendingAddition()
}

// PendingRemoval returns the staged whitelist removal, if any.
func (v *Vault) PendingRemoval() ([]common.Address, bool) { return v.read().Whitelist.PendingRemoval() }

// Limit returns the daily limit in effect.
func (v *Vault) Limit() *uint256.Int { return v.read().Limit.Limit() }

// PendingLimit returns the staged daily limit, if any.
func (v *Vault) PendingLimit() (*uint256.Int, bool) { return v.read().Limit.PendingLimit() }

// GasCeiling returns the owner balance TopUpGas tops up to.
func (v *Vault) GasCeiling() *uint256.Int { return v.ceiling.Clone() }

// Address returns the vault's on-chain account.
func (v *Vault) Address() common.Address { return v.self }

// Available returns what can still be spent to non-whitelisted recipients at
// the current ledger time.
func (v *Vault) Available(ctx context.Context) (*uint256.Int, error) {
	now, err := v.ledger.Now(ctx)
	if err != nil {
		return nil, err
	}
	return v.read().Limit.Available(now), nil
}

// Balance returns the vault's holding of asset, queried from the ledger.
func (v *Vault) Balance(ctx context.Context, asset common.Address) (*uint256.Int, error) {
	if asset == Native {
		return v.ledger.NativeBalance(ctx, v.self)
	}
	if v.tokens == nil {
		return nil, ErrNoTokens
	}
	return v.tokens.BalanceOf(ctx, asset, v.self)
}
