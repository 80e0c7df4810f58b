package store_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/errs"
	"github.com/Mohsinsiddi/w3vault/internal/events"
	"github.com/Mohsinsiddi/w3vault/internal/store"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	ctrl  = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

type clock struct{ now uint64 }

func (c *clock) Now(context.Context) (uint64, error) { return c.now, nil }
func (c *clock) NativeBalance(context.Context, common.Address) (*uint256.Int, error) {
	return new(uint256.Int), nil
}
func (c *clock) SendNative(context.Context, common.Address, *uint256.Int) error { return nil }

func backends(t *testing.T) map[string]func() vault.Store {
	return map[string]func() vault.Store{
		"json": func() vault.Store {
			return store.NewJSONStore(filepath.Join(t.TempDir(), "vault.json"))
		},
		"leveldb": func() vault.Store {
			s, err := store.NewMemLevelDB()
			require.NoError(t, err)
			return s
		},
	}
}

func TestEmptyStore(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()
			st, err := s.Load(context.Background())
			require.NoError(t, err)
			assert.Nil(t, st)
			evs, err := s.Events(context.Background())
			require.NoError(t, err)
			assert.Empty(t, evs)
		})
	}
}

func TestVaultSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	quiet := vault.WithLogger(log.NewLogger(log.NewTerminalHandler(io.Discard, false)))

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()
			c := &clock{now: 1_700_000_000}

			v, err := vault.Create(ctx, c, owner, []common.Address{ctrl}, vault.WithStore(s), quiet)
			require.NoError(t, err)
			require.NoError(t, v.SetDailyLimit(ctx, owner, uint256.NewInt(100)))
			require.NoError(t, v.AddToWhitelist(ctx, owner, []common.Address{bob}))
			require.NoError(t, v.Transfer(ctx, owner, ctrl, vault.Native, uint256.NewInt(30)))
			require.NoError(t, v.SetDailyLimit(ctx, owner, uint256.NewInt(500)))

			v2, err := vault.Open(ctx, c, vault.WithStore(s), quiet)
			require.NoError(t, err)
			assert.True(t, v2.IsWhitelisted(bob))
			avail, err := v2.Available(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint64(70), avail.Uint64())
			require.NoError(t, v2.ConfirmDailyLimit(ctx, ctrl))
			assert.Equal(t, uint64(500), v2.Limit().Uint64())

			evs, err := v2.Events(ctx)
			require.NoError(t, err)
			require.Len(t, evs, 4)
			want := []events.Kind{events.SetDailyLimit, events.WhitelistAddition, events.Transfer, events.SetDailyLimit}
			for i, ev := range evs {
				assert.Equal(t, uint64(i+1), ev.Seq)
				assert.Equal(t, want[i], ev.Kind)
			}
		})
	}
}

func TestJSONStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := store.NewJSONStore(filepath.Join(dir, "vault.json"))
	st := vault.NewState(owner, ctrl)
	require.NoError(t, s.Commit(context.Background(), st, nil))
	require.NoError(t, s.Commit(context.Background(), st, []events.Event{events.NewDeposit(bob, uint256.NewInt(1))}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "vault.json", entries[0].Name())
}

func TestJSONStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := store.NewJSONStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()

	s, err := store.Open("", dir)
	require.NoError(t, err)
	assert.IsType(t, &store.JSONStore{}, s)

	s, err = store.Open(store.BackendLevelDB, dir)
	require.NoError(t, err)
	assert.IsType(t, &store.LevelDBStore{}, s)
	require.NoError(t, s.Close())

	_, err = store.Open("sqlite", dir)
	assert.Error(t, err)
}

// gatedLedger holds the first native send until release is closed.
type gatedLedger struct {
	*clock
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedLedger) SendNative(context.Context, common.Address, *uint256.Int) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return nil
}

func TestJSONStoreSerializesVaultsSharingAFile(t *testing.T) {
	ctx := context.Background()
	quiet := vault.WithLogger(log.NewLogger(log.NewTerminalHandler(io.Discard, false)))
	path := filepath.Join(t.TempDir(), "vault.json")
	c := &clock{now: 1_700_000_000}

	_, err := vault.Create(ctx, c, owner, []common.Address{ctrl}, vault.WithStore(store.NewJSONStore(path)), quiet,
		vault.WithGenesis(vault.Genesis{Limit: uint256.NewInt(100)}))
	require.NoError(t, err)

	gate := &gatedLedger{clock: c, entered: make(chan struct{}), release: make(chan struct{})}
	a, err := vault.Open(ctx, gate, vault.WithStore(store.NewJSONStore(path)), quiet)
	require.NoError(t, err)
	b, err := vault.Open(ctx, gate, vault.WithStore(store.NewJSONStore(path)), quiet)
	require.NoError(t, err)

	errA := make(chan error, 1)
	go func() { errA <- a.Transfer(ctx, owner, bob, vault.Native, uint256.NewInt(100)) }()
	<-gate.entered

	errB := make(chan error, 1)
	go func() { errB <- b.Transfer(ctx, owner, bob, vault.Native, uint256.NewInt(100)) }()
	select {
	case err := <-errB:
		t.Fatalf("second transfer ran while the first held the store: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	close(gate.release)
	require.NoError(t, <-errA)
	assert.ErrorIs(t, <-errB, errs.ErrInsufficientBudget)

	journal, err := b.Events(ctx)
	require.NoError(t, err)
	transfers := 0
	seqs := map[uint64]bool{}
	for _, e := range journal {
		assert.False(t, seqs[e.Seq], "sequence %d used twice", e.Seq)
		seqs[e.Seq] = true
		if e.Kind == events.Transfer {
			transfers++
		}
	}
	assert.Equal(t, 1, transfers)
}

func TestJSONStoreLockHonoursContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.json")
	unlock, err := store.NewJSONStore(path).Lock(context.Background())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = store.NewJSONStore(path).Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
