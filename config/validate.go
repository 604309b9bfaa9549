package config

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/propguard/broker/oanda"
	"github.com/rustyeddy/propguard/strategies"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return invalid("account.balance must be positive")
	}
	if c.Strategy.Symbol == "" {
		return invalid("strategy.symbol is required")
	}
	if c.Strategy.Timeframe == "" {
		return invalid("strategy.timeframe is required")
	}
	if c.Strategy.CandleLimit < 1 || c.Strategy.CandleLimit > oanda.MaxCount {
		return invalid("strategy.candle_limit must be 1-%d", oanda.MaxCount)
	}
	if c.Strategy.MaxRiskPerTrade <= 0 || c.Strategy.MaxRiskPerTrade > 1 {
		return invalid("strategy.max_risk_per_trade must be between 0 and 1")
	}
	if c.Strategy.StopDistance <= 0 {
		return invalid("strategy.stop_distance must be positive")
	}
	if c.Strategy.TargetDistance <= 0 {
		return invalid("strategy.target_distance must be positive")
	}
	if c.Strategy.VWAPLookback < 0 {
		return invalid("strategy.vwap_lookback must be >= 0")
	}
	if _, err := strategies.ByName(c.DetectorConfig()); err != nil {
		return invalid("strategy: %v", err)
	}

	p, err := c.Policy()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	switch strings.ToLower(c.Broker.Type) {
	case "paper":
		if c.Broker.Paper.CandlesFile == "" {
			return invalid("broker.paper.candles_file required for paper broker")
		}
	case "oanda":
		if c.Broker.OANDA.Token == "" || c.Broker.OANDA.AccountID == "" {
			return invalid("broker.oanda token and account_id required (or OANDA_TOKEN / OANDA_ACCOUNT_ID)")
		}
		if _, err := oanda.BaseURL(c.Broker.OANDA.Env); err != nil {
			return invalid("broker.oanda.env: %v", err)
		}
	default:
		return invalid("broker.type must be 'paper' or 'oanda'")
	}

	switch strings.ToLower(c.Sentiment.Provider) {
	case "", "none":
	case "static":
		if c.Sentiment.Static < -1 || c.Sentiment.Static > 1 {
			return invalid("sentiment.static must be within [-1, 1]")
		}
	case "http":
		if c.Sentiment.URL == "" {
			return invalid("sentiment.url required for http provider")
		}
	default:
		return invalid("sentiment.provider must be none, static or http")
	}

	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChat == "") {
		return invalid("notify telegram_token and telegram_chat must be set together")
	}

	switch strings.ToLower(c.Journal.Type) {
	case "", "none":
	case "csv":
		if c.Journal.Dir == "" {
			return invalid("journal dir required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return invalid("journal db_path required for SQLite type")
		}
	default:
		return invalid("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}
