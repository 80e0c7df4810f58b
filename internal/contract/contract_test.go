package contract_test

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3vault/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var holder = common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")

func word(v uint64) []byte {
	return math.U256Bytes(new(big.Int).SetUint64(v))
}

func TestBuiltinsRegistered(t *testing.T) {
	all := contract.AllBuiltins()
	require.Len(t, all, 2)
	assert.Equal(t, contract.ERC20, all[0].ID)
	assert.Equal(t, contract.RateOracle, all[1].ID)

	_, ok := contract.GetBuiltin("erc721")
	assert.False(t, ok)
	_, err := contract.Parsed("erc721")
	assert.Error(t, err)
}

func TestParsedERC20(t *testing.T) {
	a, err := contract.Parsed(contract.ERC20)
	require.NoError(t, err)
	assert.Equal(t, "a9059cbb", hex.EncodeToString(a.Methods["transfer"].ID))
	assert.Equal(t, "70a08231", hex.EncodeToString(a.Methods["balanceOf"].ID))
	assert.Equal(t, "313ce567", hex.EncodeToString(a.Methods["decimals"].ID))
	assert.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		a.Events["Transfer"].ID.Hex())
	assert.True(t, a.Events["Transfer"].Inputs[0].Indexed)
}

func TestPackTransfer(t *testing.T) {
	data, err := contract.PackTransfer(holder, uint256.NewInt(1000))
	require.NoError(t, err)
	require.Len(t, data, 4+32+32)
	assert.Equal(t, "a9059cbb", hex.EncodeToString(data[:4]))
	assert.Equal(t, holder.Bytes(), data[4+12:4+32])
	assert.Equal(t, word(1000), data[36:])
}

func TestUnpackTransfer(t *testing.T) {
	ok, err := contract.UnpackTransfer(word(1))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = contract.UnpackTransfer(word(0))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = contract.UnpackTransfer(nil)
	require.NoError(t, err)
	assert.True(t, ok, "empty return data counts as success")

	_, err = contract.UnpackTransfer([]byte{0x01})
	assert.Error(t, err)
}

func TestBalanceOfRoundTrip(t *testing.T) {
	data, err := contract.PackBalanceOf(holder)
	require.NoError(t, err)
	assert.Equal(t, "70a08231", hex.EncodeToString(data[:4]))

	v, err := contract.UnpackBalanceOf(word(42))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v.Uint64())
}

func TestDecimals(t *testing.T) {
	data, err := contract.PackDecimals()
	require.NoError(t, err)
	assert.Equal(t, "313ce567", hex.EncodeToString(data))

	d, err := contract.UnpackDecimals(word(18))
	require.NoError(t, err)
	assert.Equal(t, uint8(18), d)
}

func TestRate(t *testing.T) {
	data, err := contract.PackRate(holder)
	require.NoError(t, err)
	assert.Len(t, data, 4+32)

	v, err := contract.UnpackRate(word(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.Uint64())

	_, err = contract.UnpackRate(nil)
	assert.Error(t, err)
}
