package vault

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Mohsinsiddi/w3vault/internal/events"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Native is the asset identifier of the chain's native currency.
var Native = common.Address{}

// Ledger is the host chain as seen by the vault: its clock, native balances
// and native sends from the vault's own account.
type Ledger interface {
	// Now returns the timestamp of the latest block.
	Now(ctx context.Context) (uint64, error)
	NativeBalance(ctx context.Context, addr common.Address) (*uint256.Int, error)
	// SendNative returns a *PendingTxError if the send was broadcast but its
	// outcome is not known.
	SendNative(ctx context.Context, to common.Address, amount *uint256.Int) error
}

// Tokens moves and reads ERC-20 balances held by the vault.
type Tokens interface {
	// Transfer reports the token contract's boolean result; false is a failure.
	// Like Ledger.SendNative it returns a *PendingTxError for a broadcast
	// transfer whose outcome is not known.
	Transfer(ctx context.Context, token, to common.Address, amount *uint256.Int) (bool, error)
	BalanceOf(ctx context.Context, token, holder common.Address) (*uint256.Int, error)
}

// Oracle quotes the native-currency value, in wei, of one base unit of a token.
type Oracle interface {
	Rate(ctx context.Context, token common.Address) (*uint256.Int, error)
}

// PendingTxError reports a transaction that reached the network but was not
// seen mined, because waiting timed out or was cancelled. It may still be
// mined, so the vault books it as sent.
type PendingTxError struct {
	Hash common.Hash
	Err  error
}

func (e *PendingTxError) Error() string {
	return fmt.Sprintf("transaction %s broadcast but not confirmed: %v", e.Hash.Hex(), e.Err)
}

func (e *PendingTxError) Unwrap() error { return e.Err }

// Store persists vault state and its event journal.
type Store interface {
	// Lock takes exclusive use of the store, across processes where the
	// backend allows, until unlock is called.
	Lock(ctx context.Context) (unlock func(), err error)
	// Load returns the stored state, or nil if nothing was committed yet.
	Load(ctx context.Context) (*State, error)
	// Commit replaces the state and appends evs in one atomic step.
	Commit(ctx context.Context, st *State, evs []events.Event) error
	// Events returns the journal in commit order.
	Events(ctx context.Context) ([]events.Event, error)
	Close() error
}

type memStore struct {
	lk      sync.Mutex
	mu      sync.Mutex
	state   *State
	journal []events.Event
}

// NewMemStore returns a Store that keeps everything in memory.
func NewMemStore() Store {
	return &memStore{}
}

func (m *memStore) Lock(context.Context) (func(), error) {
	m.lk.Lock()
	return m.lk.Unlock, nil
}

func (m *memStore) Load(context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	return m.state.Copy(), nil
}

func (m *memStore) Commit(_ context.Context, st *State, evs []events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = st.Copy()
	m.journal = append(m.journal, evs...)
	return nil
}

func (m *memStore) Events(context.Context) ([]events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.journal), nil
}

func (m *memStore) Close() error { return nil }
