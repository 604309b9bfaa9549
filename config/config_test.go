package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rustyeddy/propguard/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, 100000.0, cfg.Account.Balance)
	assert.Equal(t, 21, cfg.Account.ResetHour)
	assert.Equal(t, 0.01, cfg.Strategy.MaxRiskPerTrade)
	assert.Equal(t, "paper", cfg.Broker.Type)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"negative balance", func(c *Config) { c.Account.Balance = -1000 }, "account.balance must be positive"},
		{"missing symbol", func(c *Config) { c.Strategy.Symbol = "" }, "strategy.symbol is required"},
		{"risk too large", func(c *Config) { c.Strategy.MaxRiskPerTrade = 1.5 }, "max_risk_per_trade"},
		{"zero risk", func(c *Config) { c.Strategy.MaxRiskPerTrade = 0 }, "max_risk_per_trade"},
		{"zero stop", func(c *Config) { c.Strategy.StopDistance = 0 }, "stop_distance must be positive"},
		{"negative target", func(c *Config) { c.Strategy.TargetDistance = -1 }, "target_distance must be positive"},
		{"unknown strategy", func(c *Config) { c.Strategy.Name = "martingale" }, "unknown strategy"},
		{"ema without period", func(c *Config) { c.Strategy.Name = "ema"; c.Strategy.EMAPeriod = 0 }, "ema period"},
		{"reset hour", func(c *Config) { c.Account.ResetHour = 24 }, "reset hour"},
		{"bad timezone", func(c *Config) { c.Account.Timezone = "Mars/Olympus" }, "account.timezone"},
		{"trailing pct", func(c *Config) { c.Risk.TrailingDrawdownPct = 0 }, "trailing drawdown"},
		{"unknown preset", func(c *Config) { c.Risk.Rules = "acme" }, "risk.rules"},
		{"oanda without token", func(c *Config) { c.Broker.Type = "oanda" }, "broker.oanda token"},
		{"unknown broker", func(c *Config) { c.Broker.Type = "mt5" }, "broker.type"},
		{"static out of range", func(c *Config) { c.Sentiment.Provider = "static"; c.Sentiment.Static = 2 }, "sentiment.static"},
		{"http without url", func(c *Config) { c.Sentiment.Provider = "http" }, "sentiment.url"},
		{"telegram half set", func(c *Config) { c.Notify.TelegramToken = "t" }, "telegram"},
		{"sqlite without path", func(c *Config) { c.Journal.Type = "sqlite" }, "db_path"},
		{"unknown journal", func(c *Config) { c.Journal.Type = "xlsx" }, "journal.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Strategy.Name = "ema-sentiment"
			cfg.Risk.LatchOnBreach = true
			cfg.Risk.Rules = "ftmo"

			path := filepath.Join(tmpDir, name)
			require.NoError(t, cfg.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strategy:\n  symbol: EUR_USD\naccount:\n  reset_hour: 0\n"), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "EUR_USD", cfg.Strategy.Symbol)
	assert.Equal(t, 0, cfg.Account.ResetHour)
	assert.Equal(t, "M5", cfg.Strategy.Timeframe)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account: [unclosed"), 0o600))
	_, err = LoadFromFile(path)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestPolicy(t *testing.T) {
	cfg := Default()
	cfg.Account.Timezone = "America/New_York"
	cfg.Account.ResetHour = 17
	cfg.Risk.LatchOnBreach = true
	cfg.Risk.Rules = "FTMO"

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, 100000.0, p.AccountSize)
	assert.Equal(t, 0.05, p.TrailingDrawdownPct)
	assert.Equal(t, 17, p.ResetHour)
	assert.Equal(t, "America/New_York", p.Location.String())
	assert.True(t, p.LatchOnBreach)
	require.NotNil(t, p.Rules)
	assert.Equal(t, Presets["ftmo"], *p.Rules)
	assert.Equal(t, 90000.0, p.Rules.MaxDrawdownFloor())

	cfg.Risk.Rules = ""
	p, err = cfg.Policy()
	require.NoError(t, err)
	assert.Nil(t, p.Rules)
}

func TestDetectorConfig(t *testing.T) {
	cfg := Default()
	dc := cfg.DetectorConfig()
	assert.Equal(t, "liquidity-sweep", dc.Name)
	assert.Equal(t, 50.0, dc.ZoneMargin)
	assert.Equal(t, 20, dc.EMAPeriod)
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"account_size: 50000\nleverage: 30\ndaily_loss: 2500\ntotal_drawdown: 5000\nprofit_target: 4000\n"), 0o600))

	rs, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, risk.RuleSet{AccountSize: 50000, Leverage: 30, DailyLoss: 2500, TotalDrawdown: 5000, ProfitTarget: 4000}, rs)

	// A rules file wins over a preset name.
	cfg := Default()
	cfg.Risk.Rules = "ftmo"
	cfg.Risk.RulesFile = path
	got, err := cfg.RuleSet()
	require.NoError(t, err)
	assert.Equal(t, 50000.0, got.AccountSize)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"account_size": 1000, "total_drawdown": 2000}`), 0o600))
	_, err = LoadRules(bad)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = LoadRules(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	assert.Equal(t, []string{"ftmo", "mff", "tft"}, PresetNames())
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PROPGUARD_SYMBOL":             "US30_USD",
		"PROPGUARD_MAX_RISK_PER_TRADE": "0.005",
		"PROPGUARD_DAILY_RESET_HOUR":   "17",
		"PROPGUARD_LATCH_ON_BREACH":    "true",
		"PROPGUARD_EMA_PERIOD":         "34",
		"RULES_FILE":                   "/etc/propguard/rules.yaml",
		"OANDA_TOKEN":                  "secret",
		"TG_CHAT":                      "42",
		"PROPGUARD_TIMEFRAME":          "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "US30_USD", cfg.Strategy.Symbol)
	assert.Equal(t, 0.005, cfg.Strategy.MaxRiskPerTrade)
	assert.Equal(t, 17, cfg.Account.ResetHour)
	assert.True(t, cfg.Risk.LatchOnBreach)
	assert.Equal(t, 34, cfg.Strategy.EMAPeriod)
	assert.Equal(t, "/etc/propguard/rules.yaml", cfg.Risk.RulesFile)
	assert.Equal(t, "secret", cfg.Broker.OANDA.Token)
	assert.Equal(t, "42", cfg.Notify.TelegramChat)
	assert.Equal(t, "M5", cfg.Strategy.Timeframe, "empty values are ignored")
}

func TestApplyEnvBadNumber(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == "PROPGUARD_STOP_DISTANCE" {
			return "wide", true
		}
		return "", false
	})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "PROPGUARD_STOP_DISTANCE")
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(""))
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PROPGUARD_TEST_ONLY_VAR=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PROPGUARD_TEST_ONLY_VAR") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-dotenv", os.Getenv("PROPGUARD_TEST_ONLY_VAR"))
}
