package cmd

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyGenesis(t *testing.T) {
	payee := common.HexToAddress("0x00000000000000000000000000000000000000b0")

	_, ok := policyGenesis(nil, false, nil)
	assert.False(t, ok, "owner-only init has no genesis")

	g, ok := policyGenesis(uint256.NewInt(100), true, nil)
	require.True(t, ok)
	assert.Equal(t, uint64(100), g.Limit.Uint64())
	assert.Nil(t, g.Whitelist, "the whitelist bootstrap stays open")

	g, ok = policyGenesis(nil, false, []common.Address{payee})
	require.True(t, ok)
	assert.Nil(t, g.Limit)
	assert.Equal(t, []common.Address{payee}, g.Whitelist)
}
