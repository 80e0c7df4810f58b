package wallet_test

import (
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/w3vault/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	addr1 = "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"
	addr2 = "0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2"
	addr3 = "0x4B20993Bc481177ec7E8f571ceCaE8A9e22C02db"

	knownKey  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	knownAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestAddWatchOnlyWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.Add("mywallet", "0x5b38da6a701c568545dcfcb03fcb875f56beddc4"))

	w, err := mgr.Get("mywallet")
	require.NoError(t, err)
	assert.Equal(t, "mywallet", w.Name)
	assert.Equal(t, wallet.TypeWatchOnly, w.Type)
	assert.Equal(t, addr1, w.Address, "address is stored checksummed")
	assert.NotEmpty(t, w.CreatedAt)
}

func TestAddRejects(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.Add("dup", addr1))

	assert.ErrorIs(t, mgr.Add("dup", addr2), wallet.ErrWalletExists)
	assert.ErrorIs(t, mgr.Add("bad", "0x123..."), wallet.ErrInvalidAddress)
}

func TestAddSigningWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWithKey("signer", knownKey))

	w, err := mgr.Get("signer")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.Equal(t, knownAddr, w.Address)
	assert.Equal(t, "w3vault.signer", w.KeyRef)
}

func TestInvalidPrivateKey(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	assert.ErrorIs(t, mgr.AddWithKey("bad", "not-a-valid-key"), wallet.ErrInvalidKey)
}

func TestListWalletsSorted(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	mgr.Add("w2", addr2) //nolint:errcheck
	mgr.Add("w3", addr3) //nolint:errcheck
	mgr.Add("w1", addr1) //nolint:errcheck

	wallets := mgr.List()
	require.Len(t, wallets, 3)
	assert.Equal(t, "w1", wallets[0].Name)
	assert.Equal(t, "w3", wallets[2].Name)
}

func TestRemoveWallet(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(ks))
	require.NoError(t, mgr.AddWithKey("w1", knownKey))

	require.NoError(t, mgr.Remove("w1"))
	_, err := mgr.Get("w1")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)

	_, err = ks.Retrieve("w3vault.w1")
	assert.Error(t, err, "key is removed with the wallet")

	assert.ErrorIs(t, mgr.Remove("ghost"), wallet.ErrWalletNotFound)
}

func TestSetDefault(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	assert.Nil(t, mgr.Default())

	mgr.Add("w1", addr1) //nolint:errcheck
	def := mgr.Default()
	require.NotNil(t, def, "a single wallet is the default")
	assert.Equal(t, "w1", def.Name)

	mgr.Add("w2", addr2) //nolint:errcheck
	assert.Nil(t, mgr.Default())

	require.NoError(t, mgr.SetDefault("w2"))
	assert.Equal(t, "w2", mgr.Default().Name)
	assert.ErrorIs(t, mgr.SetDefault("ghost"), wallet.ErrWalletNotFound)
}

func TestResolve(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	mgr.Add("alice", addr1) //nolint:errcheck

	got, err := mgr.Resolve("alice")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(addr1), got)

	got, err = mgr.Resolve(addr2)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(addr2), got)

	_, err = mgr.Resolve("bob")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestGenerateWallet(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())

	w, hexKey, err := mgr.Generate("fresh")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeSigning, w.Type)
	assert.True(t, common.IsHexAddress(w.Address))
	assert.Len(t, hexKey, 64)

	_, key2, err := mgr.Generate("fresh2")
	require.NoError(t, err)
	assert.NotEqual(t, hexKey, key2, "two generated keys must differ")

	_, _, err = mgr.Generate("fresh")
	assert.ErrorIs(t, err, wallet.ErrWalletExists)
}

func TestSignerFromManager(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.AddWithKey("signer", knownKey))

	s, err := mgr.Signer("signer")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(knownAddr), s.Address())

	_, err = mgr.Signer("ghost")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestJSONStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	ks := wallet.NewInMemoryKeystore()

	mgr := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)), wallet.WithKeystore(ks))
	require.NoError(t, mgr.Add("alice", addr1))
	require.NoError(t, mgr.AddWithKey("hot", knownKey))
	require.NoError(t, mgr.SetDefault("hot"))

	reopened := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(path)), wallet.WithKeystore(ks))
	assert.Len(t, reopened.List(), 2)
	require.NotNil(t, reopened.Default())
	assert.Equal(t, "hot", reopened.Default().Name)

	s, err := reopened.Signer("hot")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(knownAddr), s.Address())
}

func TestJSONStoreMissingFile(t *testing.T) {
	wallets, err := wallet.NewJSONStore(filepath.Join(t.TempDir(), "none.json")).Load()
	require.NoError(t, err)
	assert.Empty(t, wallets)
}
