package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads variables from a dotenv file if it exists. Variables
// already present in the environment are not overwritten.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides file values with environment variables. Unparseable
// numbers fail with ErrInvalidConfiguration.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var firstErr error
	num := func(key string, dst *float64) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfiguration, key, v, err)
			}
			return
		}
		*dst = f
	}
	integer := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfiguration, key, v, err)
			}
			return
		}
		*dst = n
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfiguration, key, v, err)
			}
			return
		}
		*dst = b
	}

	str("PROPGUARD_SYMBOL", &c.Strategy.Symbol)
	str("PROPGUARD_TIMEFRAME", &c.Strategy.Timeframe)
	str("PROPGUARD_STRATEGY", &c.Strategy.Name)
	num("PROPGUARD_MAX_RISK_PER_TRADE", &c.Strategy.MaxRiskPerTrade)
	num("PROPGUARD_ACCOUNT_BALANCE", &c.Account.Balance)
	integer("PROPGUARD_VWAP_LOOKBACK", &c.Strategy.VWAPLookback)
	num("PROPGUARD_LIQUIDITY_ZONE_MARGIN", &c.Strategy.LiquidityZoneMargin)
	num("PROPGUARD_TRAILING_DRAWDOWN_PCT", &c.Risk.TrailingDrawdownPct)
	num("PROPGUARD_DAILY_MAX_LOSS_PCT", &c.Risk.DailyMaxLossPct)
	integer("PROPGUARD_DAILY_RESET_HOUR", &c.Account.ResetHour)
	str("PROPGUARD_TIMEZONE", &c.Account.Timezone)
	integer("PROPGUARD_EMA_PERIOD", &c.Strategy.EMAPeriod)
	num("PROPGUARD_STOP_DISTANCE", &c.Strategy.StopDistance)
	num("PROPGUARD_TARGET_DISTANCE", &c.Strategy.TargetDistance)
	boolean("PROPGUARD_LATCH_ON_BREACH", &c.Risk.LatchOnBreach)
	str("PROPGUARD_RULES", &c.Risk.Rules)
	str("RULES_FILE", &c.Risk.RulesFile)
	str("PROPGUARD_BROKER", &c.Broker.Type)
	str("PROPGUARD_LOG_LEVEL", &c.LogLevel)
	str("PROPGUARD_METRICS_ADDR", &c.MetricsAddr)

	str("OANDA_TOKEN", &c.Broker.OANDA.Token)
	str("OANDA_ACCOUNT_ID", &c.Broker.OANDA.AccountID)
	str("OANDA_ENV", &c.Broker.OANDA.Env)

	str("PROPGUARD_SENTIMENT_URL", &c.Sentiment.URL)
	str("PROPGUARD_SENTIMENT_TOKEN", &c.Sentiment.Token)

	str("TG_TOKEN", &c.Notify.TelegramToken)
	str("TG_CHAT", &c.Notify.TelegramChat)

	return firstErr
}
