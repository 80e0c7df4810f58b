package wallet

import (
	"math/big"
	"testing"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0. Never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "w3vault-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: func(string) (string, error) { return "testpass", nil },
	})
	require.NoError(t, err)
	return &Keystore{ring: ring}
}

func nullKeystore() *Keystore { return &Keystore{ring: nil} }

func legacyTx(value int64) *types.Transaction {
	return types.NewTransaction(0, common.Address{1}, big.NewInt(value), 21000, big.NewInt(1e9), nil)
}

func TestSignerAddress(t *testing.T) {
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning}
	s := NewSigner(w, nullKeystore())
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
}

func TestSignTxWatchOnlyError(t *testing.T) {
	w := &Wallet{Name: "watcher", Address: testSignerAddr, Type: TypeWatchOnly}
	_, err := NewSigner(w, nullKeystore()).SignTx(legacyTx(0), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch-only")
}

func TestSignTxKeystoreNotAvailable(t *testing.T) {
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3vault.w"}
	_, err := NewSigner(w, nullKeystore()).SignTx(legacyTx(0), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving key")
}

func TestSignTxKeyNotFound(t *testing.T) {
	w := &Wallet{Name: "missing", Address: testSignerAddr, Type: TypeSigning, KeyRef: "w3vault.doesnotexist"}
	_, err := NewSigner(w, testKeystore(t)).SignTx(legacyTx(0), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving key")
}

func TestSignRecoversSender(t *testing.T) {
	ks := testKeystore(t)
	ref, err := ks.Store("testwal", testPrivKeyHex)
	require.NoError(t, err)

	w := &Wallet{Name: "testwal", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	chainID := big.NewInt(8453)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     3,
		GasTipCap: big.NewInt(1e9),
		GasFeeCap: big.NewInt(2e9),
		Gas:       21000,
		To:        &common.Address{1},
		Value:     big.NewInt(1e18),
	})

	signed, err := NewSigner(w, ks).Sign(tx, chainID)
	require.NoError(t, err)
	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), from)
}

func TestSignTxDifferentChainIDs(t *testing.T) {
	iks := NewInMemoryKeystore()
	ref, err := iks.Store("testwal2", testPrivKeyHex)
	require.NoError(t, err)

	w := &Wallet{Name: "testwal2", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	s := NewSigner(w, iks)

	rawMainnet, err := s.SignTx(legacyTx(0), big.NewInt(1))
	require.NoError(t, err)
	rawBase, err := s.SignTx(legacyTx(0), big.NewInt(8453))
	require.NoError(t, err)
	assert.NotEqual(t, rawMainnet, rawBase, "same tx signed on different chains must differ")
}
