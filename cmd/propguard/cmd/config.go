package cmd

import (
	"fmt"

	"github.com/rustyeddy/propguard/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage propguard configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate a configuration file with environment overrides applied

Examples:
  propguard config init -o propguard.yaml
  propguard config validate -f propguard.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "propguard.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nEdit the file and run with:")
	fmt.Fprintf(out, "  propguard run -f %s --once\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Account:  %s ($%.2f %s, reset %02d:00 %s)\n",
		cfg.Account.ID, cfg.Account.Balance, cfg.Account.Currency, cfg.Account.ResetHour, cfg.Account.Timezone)
	fmt.Fprintf(out, "  Strategy: %s on %s %s (risk %.2f%%, stop %.2f, target %.2f)\n",
		cfg.Strategy.Name, cfg.Strategy.Symbol, cfg.Strategy.Timeframe,
		cfg.Strategy.MaxRiskPerTrade*100, cfg.Strategy.StopDistance, cfg.Strategy.TargetDistance)
	fmt.Fprintf(out, "  Risk:     trailing %.1f%%, daily %.1f%%, latch=%t\n",
		cfg.Risk.TrailingDrawdownPct*100, cfg.Risk.DailyMaxLossPct*100, cfg.Risk.LatchOnBreach)
	if rs, _ := cfg.RuleSet(); rs != nil {
		fmt.Fprintf(out, "  Rules:    size %.0f, leverage %d:1, daily loss %.0f, drawdown %.0f, target %.0f\n",
			rs.AccountSize, rs.Leverage, rs.DailyLoss, rs.TotalDrawdown, rs.ProfitTarget)
	}
	fmt.Fprintf(out, "  Broker:   %s\n", cfg.Broker.Type)
	fmt.Fprintf(out, "  Journal:  %s\n", cfg.Journal.Type)
	return nil
}

// loadConfig reads path (or defaults when empty), loads the dotenv file,
// applies environment overrides and validates once.
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.ReadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
