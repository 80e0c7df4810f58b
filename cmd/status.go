package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3vault/internal/price"
	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
)

var statusNoPrice bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the vault's roles, balances and pending proposals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openVault(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		balance, err := s.vault.Balance(ctx, vault.Native)
		if err != nil {
			return fmt.Errorf("vault balance: %w", err)
		}
		owner := s.vault.Owner()
		ownerBal, err := s.host.NativeBalance(ctx, owner)
		if err != nil {
			return fmt.Errorf("owner balance: %w", err)
		}
		available, err := s.vault.Available(ctx)
		if err != nil {
			return err
		}

		bal := ui.Val(formatEther(balance))
		if !statusNoPrice {
			fetcher := price.NewFetcher(cfg.PriceCurrency)
			if p, err := fetcher.GetPrice(ctx, cfg.Network); err == nil {
				bal += ui.Meta(fmt.Sprintf("  (%.2f %s)", price.FiatValue(balance.ToBig(), p), strings.ToUpper(fetcher.Currency())))
			} else {
				log.Debug("Price lookup failed", "network", cfg.Network, "err", err)
			}
		}

		names := walletNames(s)
		label := func(name string) string {
			if name == "" {
				return ""
			}
			return ui.Meta(" (" + name + ")")
		}
		pairs := [][2]string{
			{"Network", ui.Kind(cfg.Network)},
			{"Vault", ui.Addr(s.vault.Address().Hex()) + label(names[s.vault.Address()])},
			{"Balance", bal},
			{"Owner", ui.Addr(owner.Hex()) + label(names[owner])},
			{"Owner gas", ui.Val(formatEther(ownerBal)) + ui.Meta(" / ceiling "+formatEther(s.vault.GasCeiling()))},
			{"Controllers", ui.Val(fmt.Sprint(len(s.vault.Controllers())))},
			{"Whitelisted", ui.Val(fmt.Sprint(len(s.vault.Whitelisted())))},
		}
		pairs = append(pairs, limitPairs(s, available.Dec(), formatEther(available))...)
		if batch, ok := s.vault.PendingAddition(); ok {
			pairs = append(pairs, [2]string{"Proposed add", ui.StyleWarning.Render(fmt.Sprintf("%d address(es)", len(batch)))})
		}
		if batch, ok := s.vault.PendingRemoval(); ok {
			pairs = append(pairs, [2]string{"Proposed remove", ui.StyleWarning.Render(fmt.Sprintf("%d address(es)", len(batch)))})
		}
		fmt.Println(ui.KeyValueBlock("w3vault", pairs))
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusNoPrice, "no-price", false, "skip the fiat price lookup")
}
