package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
)

var (
	initOwner       string
	initControllers []string
	initPolicy      string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the vault in front of the hot wallet",
	Long: `Create a vault with an owner and its controllers.

With --policy the genesis is read from a TOML file. Its daily limit and
whitelist are applied as the owner's first proposals in the same commit that
creates the vault, so either all of it exists or none of it does:

  owner       = "alice"
  controllers = ["bob", "carol"]
  daily_limit = "1000000000000000000"
  whitelist   = ["0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2"]

Examples:
  w3vault init --owner alice --controller bob --controller carol
  w3vault init --policy vault.toml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		policy := &config.Policy{Owner: initOwner, Controllers: initControllers}
		if initPolicy != "" {
			var err error
			if policy, err = config.LoadPolicy(initPolicy); err != nil {
				return err
			}
		}
		if policy.Owner == "" {
			return fmt.Errorf("owner required\n  Usage: w3vault init --owner <wallet> [--controller <wallet>]...")
		}

		s, err := connect()
		if err != nil {
			return err
		}
		owner, err := s.mgr.Resolve(policy.Owner)
		if err != nil {
			return fmt.Errorf("owner: %w", err)
		}
		controllers, err := resolveAll(s.mgr, policy.Controllers)
		if err != nil {
			return fmt.Errorf("controllers: %w", err)
		}
		whitelist, err := resolveAll(s.mgr, policy.Whitelist)
		if err != nil {
			return fmt.Errorf("whitelist: %w", err)
		}
		limit, hasLimit, err := policy.Limit()
		if err != nil {
			return err
		}

		st, opts, err := vaultOptions(s.client, s.host)
		if err != nil {
			return err
		}
		if genesis, ok := policyGenesis(limit, hasLimit, whitelist); ok {
			opts = append(opts, vault.WithGenesis(genesis))
		}
		s.vault, err = vault.Create(cmd.Context(), s.host, owner, controllers, opts...)
		if err != nil {
			st.Close() //nolint:errcheck
			return err
		}
		defer s.Close()

		fmt.Println(ui.Banner(Version))
		fmt.Println(ui.KeyValueBlock("Vault created", [][2]string{
			{"Hot wallet", ui.Addr(s.host.Address().Hex())},
			{"Owner", ui.Addr(owner.Hex())},
			{"Controllers", ui.Val(fmt.Sprint(len(controllers)))},
			{"Daily limit", ui.Val(formatEther(s.vault.Limit()))},
			{"Whitelisted", ui.Val(fmt.Sprint(len(s.vault.Whitelisted())))},
			{"State", ui.Meta(cfg.StateBackend + " in " + cfg.Dir())},
		}))
		if !hasLimit {
			fmt.Println(ui.Hint("Set the daily limit with: w3vault limit set <amount> --as " + policy.Owner))
		}
		return nil
	},
}

// policyGenesis builds the genesis of a policy file; ok is false if the
// policy sets neither a limit nor a whitelist.
func policyGenesis(limit *uint256.Int, hasLimit bool, whitelist []common.Address) (g vault.Genesis, ok bool) {
	if hasLimit {
		g.Limit = limit
	}
	if len(whitelist) > 0 {
		g.Whitelist = whitelist
	}
	return g, hasLimit || len(whitelist) > 0
}

func init() {
	initCmd.Flags().StringVar(&initOwner, "owner", "", "owner wallet name or address")
	initCmd.Flags().StringSliceVar(&initControllers, "controller", nil, "controller wallet name or address (repeatable)")
	initCmd.Flags().StringVar(&initPolicy, "policy", "", "TOML genesis policy file")
	initCmd.MarkFlagsMutuallyExclusive("owner", "policy")
	initCmd.MarkFlagsMutuallyExclusive("controller", "policy")
}
