package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var transferToken string

var transferCmd = &cobra.Command{
	Use:   "transfer <to> <amount>",
	Short: "Send funds out of the vault (owner)",
	Long: `Send native currency, or an ERC-20 token with --token, from the hot wallet.

Whitelisted recipients are paid without touching the daily limit. Any other
recipient is charged against it; token amounts are valued in wei through
the configured price oracle first.

Token amounts are in the token's base units.`,
	Example: `  w3vault transfer bob 0.25eth --as alice
  w3vault transfer 0x5B38Da6a701c568545dCfcB03FcB875f56beddC4 1000000 --token 0xA0b8...eB48`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		asset := vault.Native
		if transferToken != "" {
			if !common.IsHexAddress(transferToken) {
				return fmt.Errorf("invalid token address %q", transferToken)
			}
			asset = common.HexToAddress(transferToken)
		}
		return withCaller(cmd, func(s *session, caller callerID) error {
			to, err := s.mgr.Resolve(args[0])
			if err != nil {
				return err
			}
			whitelisted := s.vault.IsWhitelisted(to)

			spin := ui.NewSpinner("Sending...")
			spin.Start()
			err = s.vault.Transfer(cmd.Context(), caller.addr, to, asset, amount)
			spin.Stop()

			what := formatEther(amount)
			if asset != vault.Native {
				what = amount.Dec() + " of " + asset.Hex()
			}
			if msg := unconfirmed("Transfer of "+what, err); msg != "" {
				fmt.Println(msg)
			} else if err != nil {
				return err
			} else {
				fmt.Println(ui.Success(fmt.Sprintf("Sent %s to %s.", what, ui.Addr(to.Hex()))))
			}
			if whitelisted {
				fmt.Println(ui.Meta("  Whitelisted recipient, daily limit untouched."))
			} else if left, err := s.vault.Available(cmd.Context()); err == nil {
				fmt.Println(ui.Meta("  Left today: " + formatEther(left)))
			}
			return nil
		})
	},
}

func init() {
	transferCmd.Flags().StringVar(&transferToken, "token", "", "ERC-20 token address (default: native currency)")
}
