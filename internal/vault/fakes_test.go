package vault_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Mohsinsiddi/w3vault/internal/events"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	owner   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	ctrl    = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	ctrl2   = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	bob     = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	carol   = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	token   = common.HexToAddress("0x00000000000000000000000000000000000000e2")
	self    = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	errBoom = errors.New("boom")
)

const t0 uint64 = 1_700_000_000

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

type send struct {
	to     common.Address
	amount uint64
}

type fakeLedger struct {
	now      uint64
	balances map[common.Address]*uint256.Int
	sends    []send
	sendErr  error
	clockErr error
}

func newLedger() *fakeLedger {
	return &fakeLedger{now: t0, balances: map[common.Address]*uint256.Int{}}
}

func (l *fakeLedger) Now(context.Context) (uint64, error) { return l.now, l.clockErr }

func (l *fakeLedger) NativeBalance(_ context.Context, addr common.Address) (*uint256.Int, error) {
	if b, ok := l.balances[addr]; ok {
		return b.Clone(), nil
	}
	return new(uint256.Int), nil
}

func (l *fakeLedger) SendNative(_ context.Context, to common.Address, amount *uint256.Int) error {
	if l.sendErr != nil {
		return l.sendErr
	}
	l.sends = append(l.sends, send{to, amount.Uint64()})
	bal := l.balances[to]
	if bal == nil {
		bal = new(uint256.Int)
	}
	l.balances[to] = new(uint256.Int).Add(bal, amount)
	return nil
}

type fakeTokens struct {
	result    bool
	err       error
	transfers []send
	balance   *uint256.Int
}

func (f *fakeTokens) Transfer(_ context.Context, _, to common.Address, amount *uint256.Int) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.result {
		f.transfers = append(f.transfers, send{to, amount.Uint64()})
	}
	return f.result, nil
}

func (f *fakeTokens) BalanceOf(context.Context, common.Address, common.Address) (*uint256.Int, error) {
	return f.balance.Clone(), nil
}

type fakeOracle struct {
	rates map[common.Address]*uint256.Int
	err   error
}

func (o *fakeOracle) Rate(_ context.Context, tok common.Address) (*uint256.Int, error) {
	if o.err != nil {
		return nil, o.err
	}
	if r, ok := o.rates[tok]; ok {
		return r.Clone(), nil
	}
	return new(uint256.Int), nil
}

type failingStore struct {
	vault.Store
	fail bool
}

func (s *failingStore) Commit(ctx context.Context, st *vault.State, evs []events.Event) error {
	if s.fail {
		return errBoom
	}
	return s.Store.Commit(ctx, st, evs)
}

type fixture struct {
	v      *vault.Vault
	ledger *fakeLedger
	tokens *fakeTokens
	oracle *fakeOracle
}

func quiet() log.Logger {
	return log.NewLogger(log.NewTerminalHandler(io.Discard, false))
}

// newFixture returns a vault with a daily limit of 100 and an empty whitelist
// that has already been initialized.
func newFixture(t *testing.T, opts ...vault.Option) *fixture {
	t.Helper()
	f := &fixture{
		ledger: newLedger(),
		tokens: &fakeTokens{result: true, balance: u(0)},
		oracle: &fakeOracle{rates: map[common.Address]*uint256.Int{token: u(2)}},
	}
	base := []vault.Option{
		vault.WithTokens(f.tokens),
		vault.WithOracle(f.oracle),
		vault.WithAddress(self),
		vault.WithLogger(quiet()),
	}
	v, err := vault.Create(context.Background(), f.ledger, owner, []common.Address{ctrl}, append(base, opts...)...)
	require.NoError(t, err)
	f.v = v

	ctx := context.Background()
	require.NoError(t, v.SetDailyLimit(ctx, owner, u(100)))
	require.NoError(t, v.AddToWhitelist(ctx, owner, nil))
	return f
}
