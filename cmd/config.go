package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a config value by its key.

Keys: network, rpc_url, hot_wallet, default_wallet, state_backend,
      gas_ceiling_wei, oracle, price_currency`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", args[0], args[1])))
		if args[0] == "state_backend" {
			fmt.Println(ui.Warn("Existing vault state is not migrated between backends."))
		}
		return nil
	},
}

var configSetRateCmd = &cobra.Command{
	Use:   "set-rate <token> <wei-per-unit>",
	Short: "Set the static rate a token is valued at when no oracle is configured",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetRate(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("One base unit of %s is now valued at %s wei", ui.Addr(args[0]), args[1])))
		if cfg.Oracle != "" {
			fmt.Println(ui.Hint("An oracle is configured and takes precedence. Clear it with: w3vault config set oracle \"\""))
		}
		return nil
	},
}

var configRemoveRateCmd = &cobra.Command{
	Use:   "remove-rate <token>",
	Short: "Remove a token's static rate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveRate(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Rate removed for " + args[0]))
		return nil
	},
}

var configPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the configured RPC endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		latency, block, err := client.Ping(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %w", cfg.RPCURL, err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s is up at block %d (%s)",
			cfg.RPCURL, block, latency.Round(time.Millisecond))))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configSetCmd, configSetRateCmd, configRemoveRateCmd, configPingCmd)
}
