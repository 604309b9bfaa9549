package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "propguard",
	Short: "Risk-governed trade decisions for prop firm accounts",
	Long: `Propguard watches account equity and a price feed, keeps trading inside
trailing drawdown, daily loss and prop firm limits, and turns liquidity
sweep or EMA/sentiment setups into sized order intents.

Every cycle produces exactly one outcome: blocked, no action, or an order.`,
	SilenceUsage: true,
}

var envFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
}
