package cmd

import (
	"context"
	"testing"

	"github.com/Mohsinsiddi/w3vault/internal/errs"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	ctrl  = common.HexToAddress("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")
	payee = common.HexToAddress("0x4B20993Bc481177ec7E8f571ceCaE8A9e22C02db")
	other = common.HexToAddress("0x78731D3Ca6b7E34aC0F824c42a7cC18A495cabaB")
)

type fixedLedger struct{ now uint64 }

func (l fixedLedger) Now(context.Context) (uint64, error) { return l.now, nil }

func (fixedLedger) NativeBalance(context.Context, common.Address) (*uint256.Int, error) {
	return new(uint256.Int), nil
}

func (fixedLedger) SendNative(context.Context, common.Address, *uint256.Int) error { return nil }

// stagedVault returns a vault with an addition, a removal and a limit change
// waiting for a controller.
func stagedVault(t *testing.T) *vault.Vault {
	t.Helper()
	ctx := context.Background()
	v, err := vault.Create(ctx, fixedLedger{now: 1_000}, owner, []common.Address{ctrl})
	require.NoError(t, err)

	require.NoError(t, v.SetDailyLimit(ctx, owner, uint256.NewInt(100)))
	require.NoError(t, v.SetDailyLimit(ctx, owner, uint256.NewInt(200)))
	require.NoError(t, v.AddToWhitelist(ctx, owner, []common.Address{payee}))
	require.NoError(t, v.AddToWhitelist(ctx, owner, []common.Address{other}))
	require.NoError(t, v.RemoveFromWhitelist(ctx, owner, []common.Address{payee}))
	return v
}

func TestPendingProposalsEmpty(t *testing.T) {
	v, err := vault.Create(context.Background(), fixedLedger{}, owner, nil)
	require.NoError(t, err)
	assert.Empty(t, pendingProposals(context.Background(), v, ctrl))
}

func TestPendingProposals(t *testing.T) {
	ctx := context.Background()
	v := stagedVault(t)

	props := pendingProposals(ctx, v, ctrl)
	require.Len(t, props, 3)
	assert.Equal(t, "Whitelist addition", props[0].Kind)
	assert.Equal(t, "Whitelist removal", props[1].Kind)
	assert.Equal(t, "Daily limit", props[2].Kind)
	assert.Contains(t, props[2].Detail, "->")

	require.NoError(t, props[0].Confirm())
	assert.True(t, v.IsWhitelisted(other))

	require.NoError(t, props[1].Confirm())
	assert.False(t, v.IsWhitelisted(payee))

	require.NoError(t, props[2].Cancel())
	_, pending := v.PendingLimit()
	assert.False(t, pending)
	assert.Equal(t, uint64(100), v.Limit().Uint64())

	assert.Empty(t, pendingProposals(ctx, v, ctrl))
}

func TestPendingProposalsActAsCaller(t *testing.T) {
	v := stagedVault(t)
	props := pendingProposals(context.Background(), v, owner)
	require.Len(t, props, 3)

	assert.ErrorIs(t, props[2].Confirm(), errs.ErrUnauthorized)
	_, pending := v.PendingLimit()
	assert.True(t, pending, "a refused confirmation leaves the proposal staged")
}

func TestJoinAddrs(t *testing.T) {
	assert.Equal(t, "(empty batch)", joinAddrs(nil))
	assert.Contains(t, joinAddrs([]common.Address{payee, other}), ", ")
}
