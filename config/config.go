// Package config is the typed, validate-once configuration of a propguard
// process. Files are YAML (JSON accepted); environment variables override
// file values.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration wraps every validation failure. It is fatal at startup.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config represents the complete process configuration
type Config struct {
	Account     AccountConfig   `json:"account" yaml:"account"`
	Strategy    StrategyConfig  `json:"strategy" yaml:"strategy"`
	Risk        RiskConfig      `json:"risk" yaml:"risk"`
	Broker      BrokerConfig    `json:"broker" yaml:"broker"`
	Sentiment   SentimentConfig `json:"sentiment" yaml:"sentiment"`
	Notify      NotifyConfig    `json:"notify" yaml:"notify"`
	Journal     JournalConfig   `json:"journal" yaml:"journal"`
	LogLevel    string          `json:"log_level" yaml:"log_level"`
	MetricsAddr string          `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
}

// AccountConfig describes the account being protected.
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
	// ResetHour is the daily rollover hour (0-23) in Timezone.
	ResetHour int    `json:"reset_hour" yaml:"reset_hour"`
	Timezone  string `json:"timezone" yaml:"timezone"`
}

// StrategyConfig contains detector and order bracket parameters
type StrategyConfig struct {
	Name            string  `json:"name" yaml:"name"`
	Symbol          string  `json:"symbol" yaml:"symbol"`
	Timeframe       string  `json:"timeframe" yaml:"timeframe"`
	CandleLimit     int     `json:"candle_limit" yaml:"candle_limit"`
	MaxRiskPerTrade float64 `json:"max_risk_per_trade" yaml:"max_risk_per_trade"`

	VWAPLookback        int     `json:"vwap_lookback" yaml:"vwap_lookback"`
	LiquidityZoneMargin float64 `json:"liquidity_zone_margin" yaml:"liquidity_zone_margin"`
	EMAPeriod           int     `json:"ema_period" yaml:"ema_period"`

	StopDistance   float64 `json:"stop_distance" yaml:"stop_distance"`
	TargetDistance float64 `json:"target_distance" yaml:"target_distance"`

	// SentimentText is scored each cycle when a sentiment provider is set.
	SentimentText string `json:"sentiment_text,omitempty" yaml:"sentiment_text,omitempty"`
}

// RiskConfig contains the circuit breaker settings.
type RiskConfig struct {
	TrailingDrawdownPct float64 `json:"trailing_drawdown_pct" yaml:"trailing_drawdown_pct"`
	DailyMaxLossPct     float64 `json:"daily_max_loss_pct" yaml:"daily_max_loss_pct"`
	LatchOnBreach       bool    `json:"latch_on_breach" yaml:"latch_on_breach"`
	// Rules names a prop firm preset (ftmo, tft, mff). RulesFile wins when both are set.
	Rules     string `json:"rules,omitempty" yaml:"rules,omitempty"`
	RulesFile string `json:"rules_file,omitempty" yaml:"rules_file,omitempty"`
}

type BrokerConfig struct {
	Type  string      `json:"type" yaml:"type"` // "paper" or "oanda"
	OANDA OANDAConfig `json:"oanda" yaml:"oanda"`
	Paper PaperConfig `json:"paper" yaml:"paper"`
}

type OANDAConfig struct {
	Token     string `json:"token,omitempty" yaml:"token,omitempty"`
	AccountID string `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	Env       string `json:"env" yaml:"env"` // practice or live
}

type PaperConfig struct {
	CandlesFile string `json:"candles_file" yaml:"candles_file"`
	Warmup      int    `json:"warmup" yaml:"warmup"`
}

type SentimentConfig struct {
	Provider string  `json:"provider" yaml:"provider"` // none, static or http
	Static   float64 `json:"static,omitempty" yaml:"static,omitempty"`
	URL      string  `json:"url,omitempty" yaml:"url,omitempty"`
	Token    string  `json:"token,omitempty" yaml:"token,omitempty"`
}

type NotifyConfig struct {
	TelegramToken string `json:"telegram_token,omitempty" yaml:"telegram_token,omitempty"`
	TelegramChat  string `json:"telegram_chat,omitempty" yaml:"telegram_chat,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile reads a YAML or JSON file on top of Default and validates it.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile parses path on top of Default without validating, so callers
// can apply environment overrides first.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse config (tried YAML and JSON): %v", ErrInvalidConfiguration, err)
		}
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Default returns a paper trading configuration for NAS100 on five minute
// candles with the liquidity sweep detector.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:        "PAPER-001",
			Currency:  "USD",
			Balance:   100000,
			ResetHour: 21,
			Timezone:  "UTC",
		},
		Strategy: StrategyConfig{
			Name:                "liquidity-sweep",
			Symbol:              "NAS100_USD",
			Timeframe:           "M5",
			CandleLimit:         100,
			MaxRiskPerTrade:     0.01,
			VWAPLookback:        0,
			LiquidityZoneMargin: 50,
			EMAPeriod:           20,
			StopDistance:        100,
			TargetDistance:      150,
		},
		Risk: RiskConfig{
			TrailingDrawdownPct: 0.05,
			DailyMaxLossPct:     0.03,
		},
		Broker: BrokerConfig{
			Type:  "paper",
			OANDA: OANDAConfig{Env: "practice"},
			Paper: PaperConfig{CandlesFile: "./candles.csv", Warmup: 20},
		},
		Sentiment: SentimentConfig{Provider: "none"},
		Journal: JournalConfig{
			Type: "csv",
			Dir:  "./journal",
		},
		LogLevel: "info",
	}
}
