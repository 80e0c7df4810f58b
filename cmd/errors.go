package cmd

import (
	"errors"

	"github.com/Mohsinsiddi/w3vault/internal/errs"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
)

// errorHints suggests a next step for each failure kind.
var errorHints = map[error]string{
	errs.ErrUnauthorized:       "Check which wallet you act as: pass --as <wallet> or run `w3vault wallet use`.",
	errs.ErrInvalidArgument:    "Amounts take a unit suffix, e.g. 1.5eth or 30gwei; batches hold at most 20 addresses.",
	errs.ErrProtocolState:      "Run `w3vault review` to see what is pending.",
	errs.ErrInsufficientBudget: "Check the remaining budget with `w3vault limit show`.",
	errs.ErrExternalCall:       "Check rpc_url and the hot wallet balance with `w3vault status`.",
}

// unconfirmed reports a send the vault booked although its receipt was not
// seen, or returns "" when err is not such a send.
func unconfirmed(what string, err error) string {
	var pending *vault.PendingTxError
	if !errors.As(err, &pending) {
		return ""
	}
	return ui.Warn(what+" broadcast but not confirmed yet. It is recorded as sent.") + "\n" +
		ui.Meta("  Tx: "+pending.Hash.Hex()+" ("+pending.Err.Error()+")")
}

// describeError renders err for the terminal with a hint for known kinds.
func describeError(err error) string {
	out := ui.Err(err.Error())
	switch {
	case errors.Is(err, vault.ErrNotInitialized):
		return out + "\n" + ui.Hint("Create the vault first: w3vault init --owner <wallet>")
	case errors.Is(err, vault.ErrExists):
		return out + "\n" + ui.Hint("The vault is already set up; see `w3vault status`.")
	}
	if hint, ok := errorHints[errs.Kind(err)]; ok {
		return out + "\n" + ui.Hint(hint)
	}
	return out
}
