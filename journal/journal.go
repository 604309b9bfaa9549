// Package journal is the append-only record of what the decision cycle saw
// and decided: governor audits, daily equity snapshots and cycle outcomes.
package journal

import (
	"time"

	"github.com/rustyeddy/propguard/risk"
)

// OutcomeRecord is one decision cycle's result. Order fields are zero
// unless Kind is "order".
type OutcomeRecord struct {
	CycleID    string
	Time       time.Time
	Kind       string // blocked, no_action, order, order_rejected
	Reason     string
	Symbol     string
	Side       string
	Size       float64
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	IntentID   string
	Detail     string
}

type Journal interface {
	RecordAudit(risk.AuditRecord) error
	RecordSnapshot(risk.EquitySnapshot) error
	RecordOutcome(OutcomeRecord) error
	Close() error
}

// Discard drops every record.
type Discard struct{}

func (Discard) RecordAudit(risk.AuditRecord) error       { return nil }
func (Discard) RecordSnapshot(risk.EquitySnapshot) error { return nil }
func (Discard) RecordOutcome(OutcomeRecord) error        { return nil }
func (Discard) Close() error                             { return nil }
