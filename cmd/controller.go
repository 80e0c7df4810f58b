package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
)

var controllerCmd = &cobra.Command{
	Use:   "controller",
	Short: "Manage the controller set (controllers only)",
}

var controllerAddCmd = &cobra.Command{
	Use:   "add <wallet|address>",
	Short: "Grant the controller role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCaller(cmd, func(s *session, caller callerID) error {
			target, err := s.mgr.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := s.vault.AddController(cmd.Context(), caller.addr, target); err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("%s is now a controller.", ui.Addr(target.Hex()))))
			return nil
		})
	},
}

var controllerRemoveCmd = &cobra.Command{
	Use:   "remove <wallet|address>",
	Short: "Revoke the controller role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCaller(cmd, func(s *session, caller callerID) error {
			target, err := s.mgr.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := s.vault.RemoveController(cmd.Context(), caller.addr, target); err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("%s is no longer a controller.", ui.Addr(target.Hex()))))
			return nil
		})
	},
}

var controllerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the owner and controllers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		t := ui.NewTable([]ui.Column{
			{Title: "Role", Width: 12},
			{Title: "Address", Width: 44},
			{Title: "Wallet", Width: 16},
		})
		names := walletNames(s)
		t.AddRow(ui.Row{ui.StyleWarning.Render("owner"), ui.Addr(s.vault.Owner().Hex()), ui.Val(names[s.vault.Owner()])})
		ctrls := s.vault.Controllers()
		for _, c := range ctrls {
			t.AddRow(ui.Row{ui.Kind("controller"), ui.Addr(c.Hex()), ui.Val(names[c])})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d controller(s)", len(ctrls))))
		return nil
	},
}

func init() {
	controllerCmd.AddCommand(controllerAddCmd, controllerRemoveCmd, controllerListCmd)
}
