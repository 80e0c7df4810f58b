package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3vault/internal/ui"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount>",
	Short: "Show an amount in wei, gwei and ether",
	Long: `Show how w3vault reads an amount argument.

Amounts are wei unless they carry a unit: wei, gwei, eth or ether.`,
	Example: `  w3vault convert 1.5eth
  w3vault convert "50 gwei"
  w3vault convert 1000000000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wei, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Unit Conversion", convertPairs(args[0], wei)))
		return nil
	},
}

func convertPairs(input string, wei *uint256.Int) [][2]string {
	gwei := new(big.Rat).SetFrac(wei.ToBig(), big.NewInt(1_000_000_000))
	return [][2]string{
		{"Input", ui.Val(input)},
		{"Wei", ui.Val(wei.Dec() + " wei")},
		{"Gwei", ui.Val(trimZeros(gwei.FloatString(9)) + " gwei")},
		{"Ether", ui.Val(formatEther(wei))},
		{"Hex", ui.Val(wei.Hex())},
	}
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
}
