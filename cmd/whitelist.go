package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Manage the recipients transfers skip the daily limit for",
	Long: `The owner proposes whitelist changes; a controller confirms or cancels them.

The very first addition takes effect at once. Every later addition, and
every removal, waits for a controller.`,
}

var whitelistAddCmd = &cobra.Command{
	Use:   "add <wallet|address>...",
	Short: "Propose adding addresses (owner)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCaller(cmd, func(s *session, caller callerID) error {
			addrs, err := resolveAll(s.mgr, args)
			if err != nil {
				return err
			}
			if err := s.vault.AddToWhitelist(cmd.Context(), caller.addr, addrs); err != nil {
				return err
			}
			if _, staged := s.vault.PendingAddition(); !staged {
				fmt.Println(ui.Success(fmt.Sprintf("Whitelisted %d address(es).", len(addrs))))
				return nil
			}
			fmt.Println(ui.Success(fmt.Sprintf("Proposed adding %d address(es).", len(addrs))))
			fmt.Println(ui.Hint("A controller confirms with: w3vault whitelist confirm-add"))
			return nil
		})
	},
}

var whitelistConfirmAddCmd = &cobra.Command{
	Use:   "confirm-add",
	Short: "Apply the proposed addition (controller)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCaller(cmd, func(s *session, caller callerID) error {
			batch, _ := s.vault.PendingAddition()
			if err := s.vault.ConfirmWhitelistAddition(cmd.Context(), caller.addr); err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Whitelisted %d address(es).", len(batch))))
			return nil
		})
	},
}

var whitelistCancelAddCmd = &cobra.Command{
	Use:   "cancel-add",
	Short: "Discard the proposed addition (controller)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCaller(cmd, func(s *session, caller callerID) error {
			if err := s.vault.CancelWhitelistAddition(cmd.Context(), caller.addr); err != nil {
				return err
			}
			fmt.Println(ui.Success("Addition proposal cancelled."))
			return nil
		})
	},
}

var whitelistRemoveCmd = &cobra.Command{
	Use:   "remove <wallet|address>...",
	Short: "Propose removing addresses (owner)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCaller(cmd, func(s *session, caller callerID) error {
			addrs, err := resolveAll(s.mgr, args)
			if err != nil {
				return err
			}
			if err := s.vault.RemoveFromWhitelist(cmd.Context(), caller.addr, addrs); err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Proposed removing %d address(es).", len(addrs))))
			fmt.Println(ui.Hint("A controller confirms with: w3vault whitelist confirm-remove"))
			return nil
		})
	},
}

var whitelistConfirmRemoveCmd = &cobra.Command{
	Use:   "confirm-remove",
	Short: "Apply the proposed removal (controller)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCaller(cmd, func(s *session, caller callerID) error {
			batch, _ := s.vault.PendingRemoval()
			if err := s.vault.ConfirmWhitelistRemoval(cmd.Context(), caller.addr); err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Removed %d address(es) from the whitelist.", len(batch))))
			return nil
		})
	},
}

var whitelistCancelRemoveCmd = &cobra.Command{
	Use:   "cancel-remove",
	Short: "Discard the proposed removal (controller)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCaller(cmd, func(s *session, caller callerID) error {
			if err := s.vault.CancelWhitelistRemoval(cmd.Context(), caller.addr); err != nil {
				return err
			}
			fmt.Println(ui.Success("Removal proposal cancelled."))
			return nil
		})
	},
}

var whitelistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List whitelisted and proposed addresses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		names := walletNames(s)
		t := ui.NewTable([]ui.Column{
			{Title: "Address", Width: 44},
			{Title: "Wallet", Width: 16},
			{Title: "Status", Width: 18},
		})
		addRows := func(addrs []common.Address, status string) {
			for _, a := range addrs {
				t.AddRow(ui.Row{ui.Addr(a.Hex()), ui.Val(names[a]), status})
			}
		}
		members := s.vault.Whitelisted()
		addRows(members, ui.StyleSuccess.Render("whitelisted"))
		if batch, ok := s.vault.PendingAddition(); ok {
			addRows(batch, ui.StyleWarning.Render("pending addition"))
		}
		if batch, ok := s.vault.PendingRemoval(); ok {
			addRows(batch, ui.StyleWarning.Render("pending removal"))
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d whitelisted address(es)", len(members))))
		return nil
	},
}

func init() {
	whitelistCmd.AddCommand(
		whitelistAddCmd,
		whitelistConfirmAddCmd,
		whitelistCancelAddCmd,
		whitelistRemoveCmd,
		whitelistConfirmRemoveCmd,
		whitelistCancelRemoveCmd,
		whitelistListCmd,
	)
}
