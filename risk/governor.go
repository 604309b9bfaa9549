package risk

import (
	"fmt"
	"time"
)

// Block reasons reported by the governor.
const (
	ReasonAllowed     = "allowed"
	ReasonTrailing    = "trailing drawdown hit"
	ReasonDailyLoss   = "daily loss limit hit"
	ReasonMaxDrawdown = "max drawdown hit"
)

// Status is the governor's trade permission state.
type Status int

const (
	Enabled Status = iota
	Disabled
)

func (s Status) String() string {
	switch s {
	case Enabled:
		return "ENABLED"
	case Disabled:
		return "DISABLED"
	default:
		return "UNKNOWN"
	}
}

// AuditRecord is the flat row written for every evaluation.
type AuditRecord struct {
	Time          time.Time
	CurrentEquity float64
	PeakEquity    float64
	TrailingLimit float64
	DailyLimit    float64
	Permitted     bool
	Reason        string
}

// Decision is the outcome of one Evaluate call.
type Decision struct {
	State  RiskState
	Status Status
	Reason string
	// Detail carries the numbers behind Reason for logs and alerts.
	Detail string
	Audit  AuditRecord

	// Transition is true when Status differs from the previous evaluation.
	Transition bool
	// Snapshot is set when this evaluation rolled the daily window.
	Snapshot *EquitySnapshot
	// Latched is true when the decision came from a held breach rather than
	// the current numbers.
	Latched bool
	// TargetReached is true once equity reaches the rule set's profit target.
	TargetReached bool
}

// Permitted reports whether trading is allowed.
func (d Decision) Permitted() bool { return d.Status == Enabled }

// Governor decides whether trading is permitted from the tracker's limits.
//
//	ENABLED --breach--> DISABLED(reason)
//	DISABLED --recovery--> ENABLED        (LatchOnBreach == false)
//	DISABLED --daily rollover--> ENABLED  (LatchOnBreach, daily loss latch only)
//	DISABLED --Reset()--> ENABLED         (LatchOnBreach)
type Governor struct {
	policy  Policy
	tracker *Tracker

	status Status
	reason string
}

// NewGovernor validates p and builds a governor with its own tracker.
func NewGovernor(p Policy) (*Governor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Governor{
		policy:  p,
		tracker: NewTracker(p),
		status:  Enabled,
		reason:  ReasonAllowed,
	}, nil
}

func (g *Governor) Tracker() *Tracker { return g.tracker }
func (g *Governor) Policy() Policy    { return g.policy }
func (g *Governor) Status() Status    { return g.status }
func (g *Governor) Reason() string    { return g.reason }

// Reset re-enables trading after a latched breach. It models a session
// restart and leaves the tracker untouched.
func (g *Governor) Reset() {
	g.status = Enabled
	g.reason = ReasonAllowed
}

// Evaluate feeds equity to the tracker and returns the resulting decision.
func (g *Governor) Evaluate(equity float64, now time.Time) Decision {
	prev := g.status
	st := g.tracker.Update(equity, now)

	if g.policy.LatchOnBreach && g.status == Disabled && g.tracker.Rolled() && g.reason == ReasonDailyLoss {
		g.Reset()
	}

	reason, detail, breached := g.check(st)
	latched := false
	switch {
	case g.policy.LatchOnBreach && g.status == Disabled:
		reason = g.reason
		detail = fmt.Sprintf("latched: %s", g.reason)
		latched = true
	case breached:
		g.status = Disabled
		g.reason = reason
	default:
		g.status = Enabled
		g.reason = ReasonAllowed
	}

	st.TradingEnabled = g.status == Enabled
	st.Reason = g.reason

	d := Decision{
		State:      st,
		Status:     g.status,
		Reason:     st.Reason,
		Detail:     detail,
		Transition: prev != g.status,
		Latched:    latched,
		Audit: AuditRecord{
			Time:          now,
			CurrentEquity: st.CurrentEquity,
			PeakEquity:    st.PeakEquity,
			TrailingLimit: st.TrailingLimit,
			DailyLimit:    st.DailyLimit,
			Permitted:     st.TradingEnabled,
			Reason:        st.Reason,
		},
	}
	if g.tracker.Rolled() {
		snap, _ := g.tracker.LastSnapshot()
		d.Snapshot = &snap
	}
	if r := g.policy.Rules; r != nil && r.ProfitTarget > 0 {
		d.TargetReached = equity >= r.AccountSize+r.ProfitTarget
	}
	return d
}

// check applies the limits to st in order: trailing drawdown, daily loss,
// then the absolute rule set limits.
func (g *Governor) check(st RiskState) (reason, detail string, breached bool) {
	eq := st.CurrentEquity
	if eq <= st.TrailingLimit {
		return ReasonTrailing, fmt.Sprintf("%s: %.2f <= %.2f", ReasonTrailing, eq, st.TrailingLimit), true
	}
	if eq <= st.DailyLimit {
		return ReasonDailyLoss, fmt.Sprintf("%s: %.2f <= %.2f", ReasonDailyLoss, eq, st.DailyLimit), true
	}
	if r := g.policy.Rules; r != nil {
		if r.TotalDrawdown > 0 && eq <= r.MaxDrawdownFloor() {
			return ReasonMaxDrawdown, fmt.Sprintf("%s: %.2f <= %.2f", ReasonMaxDrawdown, eq, r.MaxDrawdownFloor()), true
		}
		if r.DailyLoss > 0 && st.DailyPL <= -r.DailyLoss {
			return ReasonDailyLoss, fmt.Sprintf("%s: daily p/l %.2f <= %.2f", ReasonDailyLoss, st.DailyPL, -r.DailyLoss), true
		}
	}
	return ReasonAllowed, ReasonAllowed, false
}
