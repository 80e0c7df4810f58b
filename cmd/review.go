package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var reviewList bool

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Confirm or cancel pending proposals interactively (controller)",
	Long: `Walk through every proposal waiting for a controller: whitelist additions,
whitelist removals and daily limit changes. Press c to confirm, x to cancel.

With --list the proposals are printed and nothing is changed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCaller(cmd, func(s *session, caller callerID) error {
			proposals := pendingProposals(cmd.Context(), s.vault, caller.addr)
			if len(proposals) == 0 {
				fmt.Println(ui.Info("Nothing pending."))
				return nil
			}
			if reviewList {
				t := ui.NewTable([]ui.Column{{Title: "Proposal", Width: 20}, {Title: "Change", Width: 90}})
				for _, p := range proposals {
					t.AddRow(ui.Row{ui.Val(p.Kind), p.Detail})
				}
				fmt.Println(t.Render())
				return nil
			}
			if !s.vault.IsController(caller.addr) {
				fmt.Println(ui.Warn(fmt.Sprintf("%s is not a controller; confirmations will be refused.", caller.name)))
			}
			actions, err := ui.RunReview("Pending proposals", proposals)
			if err != nil {
				return err
			}
			for _, a := range actions {
				fmt.Println(ui.Success(a))
			}
			return nil
		})
	},
}

// pendingProposals lists what is staged in v, each bound to act as caller.
func pendingProposals(ctx context.Context, v *vault.Vault, caller common.Address) []ui.Proposal {
	var out []ui.Proposal
	if batch, ok := v.PendingAddition(); ok {
		out = append(out, ui.Proposal{
			Kind:    "Whitelist addition",
			Detail:  joinAddrs(batch),
			Confirm: func() error { return v.ConfirmWhitelistAddition(ctx, caller) },
			Cancel:  func() error { return v.CancelWhitelistAddition(ctx, caller) },
		})
	}
	if batch, ok := v.PendingRemoval(); ok {
		out = append(out, ui.Proposal{
			Kind:    "Whitelist removal",
			Detail:  joinAddrs(batch),
			Confirm: func() error { return v.ConfirmWhitelistRemoval(ctx, caller) },
			Cancel:  func() error { return v.CancelWhitelistRemoval(ctx, caller) },
		})
	}
	if limit, ok := v.PendingLimit(); ok {
		out = append(out, ui.Proposal{
			Kind:    "Daily limit",
			Detail:  formatEther(v.Limit()) + " -> " + formatEther(limit),
			Confirm: func() error { return v.ConfirmDailyLimit(ctx, caller) },
			Cancel:  func() error { return v.CancelDailyLimit(ctx, caller) },
		})
	}
	return out
}

func joinAddrs(addrs []common.Address) string {
	if len(addrs) == 0 {
		return "(empty batch)"
	}
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = ui.TruncateAddr(a.Hex())
	}
	return strings.Join(parts, ", ")
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewList, "list", false, "print pending proposals without changing anything")
}
