package engine

import (
	"fmt"
	"time"

	"github.com/rustyeddy/propguard/journal"
	"github.com/rustyeddy/propguard/market"
	"github.com/rustyeddy/propguard/risk"
)

// Kind classifies a cycle result.
type Kind string

const (
	Blocked  Kind = "blocked"
	NoAction Kind = "no_action"
	Order    Kind = "order"
)

// NoAction reasons.
const (
	ReasonDataUnavailable     = "data_unavailable"
	ReasonNoSetup             = "no_setup"
	ReasonInvalidStopDistance = "invalid_stop_distance"
	ReasonZeroSize            = "zero_size"
	ReasonOrderRejected       = "order_rejected"
)

// Outcome is the single result of one decision cycle.
type Outcome struct {
	ID     string
	Time   time.Time
	Kind   Kind
	Reason string

	// Intent is set only for Order outcomes.
	Intent *market.OrderIntent
	// Decision is nil when the cycle aborted before the governor ran.
	Decision  *risk.Decision
	Sentiment float64
	Err       error
}

// Label is the metrics label: the kind, or the reason for NoAction.
func (o Outcome) Label() string {
	if o.Kind == NoAction {
		return o.Reason
	}
	return string(o.Kind)
}

func (o Outcome) String() string {
	switch {
	case o.Intent != nil:
		in := o.Intent
		return fmt.Sprintf("%s %s %.2f %s @ %.5f sl=%.5f tp=%.5f", o.Kind, in.Signal.Side(), in.Size, in.Symbol, in.Entry, in.StopLoss, in.TakeProfit)
	case o.Err != nil:
		return fmt.Sprintf("%s: %s (%v)", o.Kind, o.Reason, o.Err)
	default:
		return fmt.Sprintf("%s: %s", o.Kind, o.Reason)
	}
}

// Record flattens the outcome for the journal.
func (o Outcome) Record() journal.OutcomeRecord {
	r := journal.OutcomeRecord{
		CycleID: o.ID,
		Time:    o.Time,
		Kind:    string(o.Kind),
		Reason:  o.Reason,
	}
	if o.Err != nil {
		r.Detail = o.Err.Error()
	} else if o.Decision != nil && o.Kind == Blocked {
		r.Detail = o.Decision.Detail
	}
	if in := o.Intent; in != nil {
		r.Symbol = in.Symbol
		r.Side = in.Signal.Side()
		r.Size = in.Size
		r.Entry = in.Entry
		r.StopLoss = in.StopLoss
		r.TakeProfit = in.TakeProfit
		r.IntentID = in.ID
		r.Detail = in.Reason
	}
	return r
}
