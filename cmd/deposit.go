package cmd

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/chain"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var depositTx string

var depositCmd = &cobra.Command{
	Use:   "deposit [amount]",
	Short: "Fund the vault and record the deposit",
	Long: `Send native currency from the wallet you act as to the hot wallet, and
record a Deposit event for the mined transaction. Anyone may deposit.

With --tx a transfer that already reached the hot wallet is recorded instead.
The transaction must be mined, succeed and pay the hot wallet; its sender and
value are read from the chain. Each transaction is recorded once.`,
	Example: `  w3vault deposit 1eth --as alice
  w3vault deposit --tx 0x9f2c...41ab`,
	Args: func(cmd *cobra.Command, args []string) error {
		if depositTx != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if depositTx != "" {
			hash, err := parseTxHash(depositTx)
			if err != nil {
				return err
			}
			s, err := openVault(ctx)
			if err != nil {
				return err
			}
			defer s.Close()
			return recordDeposit(cmd, s, hash)
		}

		amount, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		return withCaller(cmd, func(s *session, caller callerID) error {
			if amount.IsZero() {
				fmt.Println(ui.Meta("Nothing to deposit."))
				return nil
			}
			signer, err := signingWallet(s.mgr, caller.name)
			if err != nil {
				return err
			}
			spin := ui.NewSpinner("Sending deposit...")
			spin.Start()
			hash, err := chain.NewHost(s.client, signer).SendNativeTx(ctx, s.vault.Address(), amount)
			spin.Stop()
			var pending *vault.PendingTxError
			if errors.As(err, &pending) {
				fmt.Println(ui.Warn("Deposit broadcast but not confirmed yet."))
				fmt.Println(ui.Hint("Record it once mined: w3vault deposit --tx " + pending.Hash.Hex()))
				return nil
			}
			if err != nil {
				return fmt.Errorf("sending deposit: %w", err)
			}
			if err := s.vault.DepositTx(ctx, hash, caller.addr, amount); err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Deposited %s into %s.", formatEther(amount), ui.Addr(s.vault.Address().Hex()))))
			fmt.Println(ui.Meta("  Tx: " + hash.Hex()))
			return nil
		})
	},
}

// recordDeposit records the deposit made by transaction hash after checking
// it on chain.
func recordDeposit(cmd *cobra.Command, s *session, hash common.Hash) error {
	ctx := cmd.Context()
	from, amount, err := s.host.IncomingTransfer(ctx, hash)
	if err != nil {
		return fmt.Errorf("checking deposit: %w", err)
	}
	if err := s.vault.DepositTx(ctx, hash, from, amount); err != nil {
		return err
	}
	fmt.Println(ui.Success(fmt.Sprintf("Recorded a deposit of %s from %s.", formatEther(amount), ui.Addr(from.Hex()))))
	return nil
}

// parseTxHash reads a 0x-prefixed 32-byte transaction hash.
func parseTxHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid transaction hash %q", s)
	}
	return common.BytesToHash(b), nil
}

func init() {
	depositCmd.Flags().StringVar(&depositTx, "tx", "", "record the deposit made by this mined transaction")
}
