package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/chain"
	"github.com/Mohsinsiddi/w3vault/internal/price"
	"github.com/Mohsinsiddi/w3vault/internal/store"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
	"github.com/Mohsinsiddi/w3vault/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
)

// session is what a vault command works with.
type session struct {
	mgr    *wallet.Manager
	client *chain.EVMClient
	host   *chain.Host
	vault  *vault.Vault
}

func (s *session) Close() {
	if s.vault != nil {
		s.vault.Close() //nolint:errcheck
	}
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.OpenKeystore(cfg.Dir())),
	)
}

func newClient() (*chain.EVMClient, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("no RPC endpoint configured\n  Set one with: w3vault config set rpc_url <url>")
	}
	return chain.NewEVMClient(cfg.RPCURL), nil
}

// newHost connects to the chain as the configured hot wallet.
func newHost(mgr *wallet.Manager, client *chain.EVMClient) (*chain.Host, error) {
	signer, err := signingWallet(mgr, cfg.HotWallet)
	if err != nil {
		return nil, fmt.Errorf("hot wallet: %w", err)
	}
	return chain.NewHost(client, signer), nil
}

// signingWallet returns a signer for name, which must hold a key.
func signingWallet(mgr *wallet.Manager, name string) (*wallet.Signer, error) {
	w, err := mgr.Get(name)
	if err != nil {
		return nil, err
	}
	if w.Type != wallet.TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only\n  Re-add it with: w3vault wallet add %s --key <private-key>", name, name)
	}
	return mgr.Signer(name)
}

// callerName is the wallet commands act as: --as, then the configured
// default, then the manager's default.
func callerName(mgr *wallet.Manager) (string, error) {
	if asWallet != "" {
		return asWallet, nil
	}
	if cfg.DefaultWallet != "" {
		return cfg.DefaultWallet, nil
	}
	if w := mgr.Default(); w != nil {
		return w.Name, nil
	}
	return "", fmt.Errorf("no wallet to act as\n  Pass --as <wallet> or set one with: w3vault wallet use <name>")
}

// vaultOptions opens the configured store and wires the host into a vault.
// The caller owns the returned store until a vault takes it over.
func vaultOptions(client *chain.EVMClient, host *chain.Host) (vault.Store, []vault.Option, error) {
	ceiling, err := cfg.GasCeiling()
	if err != nil {
		return nil, nil, err
	}
	var oracle vault.Oracle
	if cfg.Oracle != "" {
		oracle = price.NewContractOracle(client, common.HexToAddress(cfg.Oracle))
	} else {
		rates, err := cfg.StaticRates()
		if err != nil {
			return nil, nil, err
		}
		oracle = price.NewStaticOracle(rates)
	}
	st, err := store.Open(cfg.StateBackend, cfg.Dir())
	if err != nil {
		return nil, nil, err
	}
	return st, []vault.Option{
		vault.WithStore(st),
		vault.WithTokens(host),
		vault.WithOracle(oracle),
		vault.WithAddress(host.Address()),
		vault.WithGasCeiling(ceiling),
	}, nil
}

// connect builds a session without opening the vault.
func connect() (*session, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	if cfg.HotWallet == "" {
		return nil, fmt.Errorf("no hot wallet configured\n  Set one with: w3vault config set hot_wallet <wallet>")
	}
	mgr := newWalletManager()
	host, err := newHost(mgr, client)
	if err != nil {
		return nil, err
	}
	return &session{mgr: mgr, client: client, host: host}, nil
}

// openVault connects and loads the existing vault.
func openVault(ctx context.Context) (*session, error) {
	s, err := connect()
	if err != nil {
		return nil, err
	}
	st, opts, err := vaultOptions(s.client, s.host)
	if err != nil {
		return nil, err
	}
	s.vault, err = vault.Open(ctx, s.host, opts...)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

// resolveAll turns wallet names or hex addresses into addresses.
func resolveAll(mgr *wallet.Manager, in []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(in))
	for _, s := range in {
		a, err := mgr.Resolve(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// callerID is the identity a command acts as.
type callerID struct {
	name string
	addr common.Address
}

// withCaller opens the vault, resolves the caller and runs fn.
func withCaller(cmd *cobra.Command, fn func(s *session, caller callerID) error) error {
	s, err := openVault(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	name, err := callerName(s.mgr)
	if err != nil {
		return err
	}
	signer, err := signingWallet(s.mgr, name)
	if err != nil {
		return err
	}
	log.Debug("Acting as", "wallet", name, "address", signer.Address())
	return fn(s, callerID{name: name, addr: signer.Address()})
}

// walletNames maps addresses to the names of local wallets.
func walletNames(s *session) map[common.Address]string {
	out := make(map[common.Address]string)
	for _, w := range s.mgr.List() {
		out[w.Addr()] = w.Name
	}
	return out
}
