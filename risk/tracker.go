package risk

import (
	"time"

	"github.com/rustyeddy/propguard/market"
)

// EquitySnapshot is the equity observed at a daily reset boundary.
type EquitySnapshot struct {
	Time   time.Time
	Equity float64
}

// RiskState is the tracker's view of the account after an update.
// TradingEnabled and Reason are filled in by the Governor.
type RiskState struct {
	Time           time.Time
	PeakEquity     float64
	CurrentEquity  float64
	DailyPL        float64
	TrailingLimit  float64
	DailyLimit     float64
	TradingEnabled bool
	Reason         string
}

// Tracker maintains peak equity, the running daily P/L and the append-only
// log of daily snapshots for one account. It is not safe for concurrent use;
// each account owns exactly one.
type Tracker struct {
	accountSize float64
	trailingPct float64
	dailyPct    float64
	resetHour   int
	loc         *time.Location

	peak     float64
	current  float64
	previous float64
	dailyPL  float64
	last     time.Time

	snapshots []EquitySnapshot
	trades    []market.OrderIntent
	rolled    bool
}

// NewTracker starts a tracker with peak and current equity at the account size.
func NewTracker(p Policy) *Tracker {
	return &Tracker{
		accountSize: p.AccountSize,
		trailingPct: p.TrailingDrawdownPct,
		dailyPct:    p.DailyMaxLossPct,
		resetHour:   p.ResetHour,
		loc:         p.location(),
		peak:        p.AccountSize,
		current:     p.AccountSize,
		previous:    p.AccountSize,
	}
}

// Update applies one equity observation.
//
// The daily rollover runs first: once per calendar day (in the tracker's
// location), after the reset hour, the current equity is appended to the
// snapshot log and the day's P/L and trade list are cleared. Otherwise the
// change since the previous observation is added to the day's P/L. Peak
// equity only ever moves up.
func (t *Tracker) Update(equity float64, now time.Time) RiskState {
	t.rolled = t.shouldRoll(now)
	if t.rolled {
		t.snapshots = append(t.snapshots, EquitySnapshot{Time: now, Equity: equity})
		t.dailyPL = 0
		t.trades = nil
	} else {
		t.dailyPL += equity - t.previous
	}

	if equity > t.peak {
		t.peak = equity
	}
	t.current = equity
	t.previous = equity
	t.last = now

	return t.State()
}

func (t *Tracker) shouldRoll(now time.Time) bool {
	local := now.In(t.loc)
	if local.Hour() < t.resetHour {
		return false
	}
	if len(t.snapshots) == 0 {
		return true
	}
	prev := t.snapshots[len(t.snapshots)-1].Time.In(t.loc)
	return dateOf(prev).Before(dateOf(local))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Rolled reports whether the last Update appended a daily snapshot.
func (t *Tracker) Rolled() bool { return t.rolled }

func (t *Tracker) Peak() float64    { return t.peak }
func (t *Tracker) Current() float64 { return t.current }
func (t *Tracker) DailyPL() float64 { return t.dailyPL }

// TrailingLimit is peak * (1 - trailing drawdown pct).
func (t *Tracker) TrailingLimit() float64 {
	return t.peak * (1 - t.trailingPct)
}

// DailyLimit is the last snapshot equity (or the account size before the
// first snapshot) * (1 - daily max loss pct).
func (t *Tracker) DailyLimit() float64 {
	base := t.accountSize
	if n := len(t.snapshots); n > 0 {
		base = t.snapshots[n-1].Equity
	}
	return base * (1 - t.dailyPct)
}

// LastSnapshot returns the most recent daily snapshot, if any.
func (t *Tracker) LastSnapshot() (EquitySnapshot, bool) {
	if len(t.snapshots) == 0 {
		return EquitySnapshot{}, false
	}
	return t.snapshots[len(t.snapshots)-1], true
}

// Snapshots returns a copy of the daily log.
func (t *Tracker) Snapshots() []EquitySnapshot {
	return append([]EquitySnapshot(nil), t.snapshots...)
}

// RecordTrade adds an intent to the day's trade list.
func (t *Tracker) RecordTrade(in market.OrderIntent) {
	t.trades = append(t.trades, in)
}

// TradesToday returns a copy of the trades recorded since the last rollover.
func (t *Tracker) TradesToday() []market.OrderIntent {
	return append([]market.OrderIntent(nil), t.trades...)
}

// State returns the current risk state without permission fields.
func (t *Tracker) State() RiskState {
	return RiskState{
		Time:          t.last,
		PeakEquity:    t.peak,
		CurrentEquity: t.current,
		DailyPL:       t.dailyPL,
		TrailingLimit: t.TrailingLimit(),
		DailyLimit:    t.DailyLimit(),
	}
}
