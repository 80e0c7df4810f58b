package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3vault/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir    string
	cfg       *config.Config
	verbosity int
	asWallet  string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3vault",
	Short: "Two-step policy for a hot wallet",
	Long: `w3vault guards a hot wallet with an owner, a set of controllers,
a whitelist of trusted recipients and a daily spending limit.

  The owner proposes, a controller confirms. Transfers to whitelisted
  addresses skip the limit; everything else is charged against it.

Commands act as the wallet given with --as, or the default wallet.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verbosity)
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

// setupLogging routes go-ethereum's structured logger to stderr at the given
// legacy verbosity (0 silent .. 5 trace).
func setupLogging(v int) {
	color := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("NO_COLOR") == ""
	h := log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(v), color)
	log.SetDefault(log.NewLogger(h))
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $W3VAULT_CONFIG_DIR or ~/.w3vault)")
	rootCmd.PersistentFlags().IntVar(&verbosity, "verbosity", 3, "log level: 0=silent 1=error 2=warn 3=info 4=debug 5=trace")
	rootCmd.PersistentFlags().StringVar(&asWallet, "as", "", "wallet to act as (default: the default wallet)")

	rootCmd.AddCommand(
		initCmd,
		walletCmd,
		controllerCmd,
		whitelistCmd,
		limitCmd,
		transferCmd,
		depositCmd,
		topupCmd,
		statusCmd,
		eventsCmd,
		reviewCmd,
		configCmd,
		convertCmd,
	)
}
