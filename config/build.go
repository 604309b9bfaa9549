package config

import (
	"time"
	_ "time/tzdata"

	"github.com/rustyeddy/propguard/risk"
	"github.com/rustyeddy/propguard/strategies"
)

// Policy builds the risk policy, resolving the timezone and any rule set.
func (c *Config) Policy() (risk.Policy, error) {
	loc := time.UTC
	if tz := c.Account.Timezone; tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return risk.Policy{}, invalid("account.timezone %q: %v", tz, err)
		}
		loc = l
	}

	rules, err := c.RuleSet()
	if err != nil {
		return risk.Policy{}, err
	}

	return risk.Policy{
		AccountSize:         c.Account.Balance,
		TrailingDrawdownPct: c.Risk.TrailingDrawdownPct,
		DailyMaxLossPct:     c.Risk.DailyMaxLossPct,
		ResetHour:           c.Account.ResetHour,
		Location:            loc,
		LatchOnBreach:       c.Risk.LatchOnBreach,
		Rules:               rules,
	}, nil
}

// DetectorConfig selects and parameterizes the signal detector.
func (c *Config) DetectorConfig() strategies.Config {
	return strategies.Config{
		Name:         c.Strategy.Name,
		ZoneMargin:   c.Strategy.LiquidityZoneMargin,
		VWAPLookback: c.Strategy.VWAPLookback,
		EMAPeriod:    c.Strategy.EMAPeriod,
	}
}
