package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
)

var topupCmd = &cobra.Command{
	Use:   "topup <amount>",
	Short: "Send the owner gas money from the vault (owner or controller)",
	Long: `Send native currency from the vault to the owner so it can pay for gas.

The amount is clamped so the owner's balance never exceeds the gas ceiling
(config key gas_ceiling_wei). Top-ups do not count against the daily limit.`,
	Example: `  w3vault topup 0.1eth --as bob`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		return withCaller(cmd, func(s *session, caller callerID) error {
			spin := ui.NewSpinner("Topping up...")
			spin.Start()
			sent, err := s.vault.TopUpGas(cmd.Context(), caller.addr, amount)
			spin.Stop()
			if msg := unconfirmed("Top-up", err); msg != "" {
				fmt.Println(msg)
			} else if err != nil {
				return err
			} else {
				fmt.Println(ui.Success(fmt.Sprintf("Sent %s to the owner %s.", formatEther(sent), ui.Addr(s.vault.Owner().Hex()))))
			}
			if !sent.Eq(amount) {
				fmt.Println(ui.Meta("  Clamped to the gas ceiling of " + formatEther(s.vault.GasCeiling()) + "."))
			}
			return nil
		})
	},
}
