package risk

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPolicy wraps every policy validation failure.
var ErrInvalidPolicy = errors.New("risk: invalid policy")

// Policy holds the capital preservation limits for one account.
type Policy struct {
	AccountSize float64 // 100000

	// Circuit breakers
	TrailingDrawdownPct float64 // 0.05, from peak equity
	DailyMaxLossPct     float64 // 0.03, from the last daily snapshot

	// Daily reset boundary, evaluated in Location.
	ResetHour int            // 21
	Location  *time.Location // nil means UTC

	// LatchOnBreach keeps trading disabled after a breach instead of
	// re-evaluating from scratch each cycle.
	LatchOnBreach bool

	// Rules adds absolute prop firm limits on top of the percentages.
	Rules *RuleSet
}

// RuleSet mirrors a prop firm evaluation account. Dollar amounts are absolute.
type RuleSet struct {
	AccountSize   float64 `json:"account_size" yaml:"account_size"`
	Leverage      int     `json:"leverage" yaml:"leverage"`
	DailyLoss     float64 `json:"daily_loss" yaml:"daily_loss"`
	TotalDrawdown float64 `json:"total_drawdown" yaml:"total_drawdown"`
	ProfitTarget  float64 `json:"profit_target" yaml:"profit_target"`
}

// MaxDrawdownFloor is the equity level at which the total drawdown rule trips.
func (r RuleSet) MaxDrawdownFloor() float64 {
	return r.AccountSize - r.TotalDrawdown
}

// Validate checks a rule set for obviously broken values.
func (r RuleSet) Validate() error {
	if r.AccountSize <= 0 {
		return fmt.Errorf("%w: rules.account_size must be positive", ErrInvalidPolicy)
	}
	if r.Leverage < 0 {
		return fmt.Errorf("%w: rules.leverage must be >= 0", ErrInvalidPolicy)
	}
	if r.DailyLoss < 0 || r.TotalDrawdown < 0 || r.ProfitTarget < 0 {
		return fmt.Errorf("%w: rules daily_loss, total_drawdown and profit_target must be >= 0", ErrInvalidPolicy)
	}
	if r.TotalDrawdown >= r.AccountSize {
		return fmt.Errorf("%w: rules.total_drawdown must be below account_size", ErrInvalidPolicy)
	}
	return nil
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Validate checks the policy once at startup.
func (p Policy) Validate() error {
	if p.AccountSize <= 0 {
		return fmt.Errorf("%w: account size must be positive", ErrInvalidPolicy)
	}
	if p.TrailingDrawdownPct <= 0 || p.TrailingDrawdownPct >= 1 {
		return fmt.Errorf("%w: trailing drawdown pct must be in (0,1)", ErrInvalidPolicy)
	}
	if p.DailyMaxLossPct <= 0 || p.DailyMaxLossPct >= 1 {
		return fmt.Errorf("%w: daily max loss pct must be in (0,1)", ErrInvalidPolicy)
	}
	if p.ResetHour < 0 || p.ResetHour > 23 {
		return fmt.Errorf("%w: reset hour must be 0-23, got %d", ErrInvalidPolicy, p.ResetHour)
	}
	if p.Rules != nil {
		return p.Rules.Validate()
	}
	return nil
}
