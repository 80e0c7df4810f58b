package cmd

import (
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/dailylimit"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
)

var limitCmd = &cobra.Command{
	Use:   "limit",
	Short: "Manage the daily spending limit",
	Long: `Transfers to recipients that are not whitelisted are charged against a
budget that refills to the daily limit once per 24h window.

The first limit the owner sets takes effect at once. Later changes wait for
a controller and apply to the budget from the next window on.`,
}

var limitSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Propose a new daily limit (owner)",
	Example: `  w3vault limit set 2eth --as alice
  w3vault limit set 500000000000000000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		return withCaller(cmd, func(s *session, caller callerID) error {
			if err := s.vault.SetDailyLimit(cmd.Context(), caller.addr, amount); err != nil {
				return err
			}
			if _, staged := s.vault.PendingLimit(); !staged {
				fmt.Println(ui.Success("Daily limit set to " + formatEther(amount) + "."))
				return nil
			}
			fmt.Println(ui.Success("Proposed a daily limit of " + formatEther(amount) + "."))
			fmt.Println(ui.Hint("A controller confirms with: w3vault limit confirm"))
			return nil
		})
	},
}

var limitConfirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Apply the proposed limit (controller)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCaller(cmd, func(s *session, caller callerID) error {
			if err := s.vault.ConfirmDailyLimit(cmd.Context(), caller.addr); err != nil {
				return err
			}
			fmt.Println(ui.Success("Daily limit is now " + formatEther(s.vault.Limit()) + "."))
			return nil
		})
	},
}

var limitCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Discard the proposed limit (controller)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCaller(cmd, func(s *session, caller callerID) error {
			if err := s.vault.CancelDailyLimit(cmd.Context(), caller.addr); err != nil {
				return err
			}
			fmt.Println(ui.Success("Limit proposal cancelled."))
			return nil
		})
	},
}

var limitShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the limit and what is left today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		available, err := s.vault.Available(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Daily limit", limitPairs(s, available.Dec(), formatEther(available))))
		return nil
	},
}

func limitPairs(s *session, availableWei, available string) [][2]string {
	snap := s.vault.Snapshot()
	pairs := [][2]string{
		{"Limit", ui.Val(formatEther(snap.Limit.Limit()))},
		{"Available", ui.Val(available) + ui.Meta(" ("+availableWei+" wei)")},
	}
	if snap.Limit.Initialized() {
		start := time.Unix(int64(snap.Limit.PeriodStart()), 0).UTC()
		pairs = append(pairs, [2]string{"Window", ui.Meta(fmt.Sprintf("%s + %s",
			start.Format(time.RFC3339), time.Duration(dailylimit.Period)*time.Second))})
	} else {
		pairs = append(pairs, [2]string{"Window", ui.Meta("not started, no limit set yet")})
	}
	if pending, ok := snap.Limit.PendingLimit(); ok {
		pairs = append(pairs, [2]string{"Proposed", ui.StyleWarning.Render(formatEther(pending))})
	}
	return pairs
}

func init() {
	limitCmd.AddCommand(limitSetCmd, limitConfirmCmd, limitCancelCmd, limitShowCmd)
}
