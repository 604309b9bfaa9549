// Package engine runs the decision cycle: fetch, govern, detect, size.
// It produces order intents but never places orders itself.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/propguard/broker"
	"github.com/rustyeddy/propguard/internal/logger"
	"github.com/rustyeddy/propguard/journal"
	"github.com/rustyeddy/propguard/market"
	"github.com/rustyeddy/propguard/monitoring"
	"github.com/rustyeddy/propguard/notify"
	"github.com/rustyeddy/propguard/pkg/id"
	"github.com/rustyeddy/propguard/risk"
	"github.com/rustyeddy/propguard/sentiment"
	"github.com/rustyeddy/propguard/strategies"
)

// Settings are the per-symbol cycle parameters.
type Settings struct {
	Symbol         string
	Timeframe      string
	CandleLimit    int
	RiskPerTrade   float64
	StopDistance   float64
	TargetDistance float64
	// SentimentText is scored each cycle when a scorer is configured.
	SentimentText string
}

// Orchestrator owns one account's risk governor. It is not safe for
// concurrent use; run one cycle at a time.
type Orchestrator struct {
	settings Settings
	governor *risk.Governor
	detector strategies.Detector
	data     broker.MarketData
	equity   broker.EquitySource

	scorer   sentiment.Scorer
	journal  journal.Journal
	notifier notify.Notifier
	metrics  *monitoring.Metrics

	targetNotified bool
}

type Option func(*Orchestrator)

// WithSentiment sets the sentiment collaborator. Without one, detectors see 0.
func WithSentiment(s sentiment.Scorer) Option {
	return func(o *Orchestrator) { o.scorer = s }
}

func WithJournal(j journal.Journal) Option {
	return func(o *Orchestrator) {
		if j != nil {
			o.journal = j
		}
	}
}

// WithNotifier sets the alert sink. Delivery failures are logged and dropped.
func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = notify.BestEffort(n) }
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New wires an orchestrator. The governor must be built from a validated policy.
func New(s Settings, g *risk.Governor, d strategies.Detector, data broker.MarketData, eq broker.EquitySource, opts ...Option) (*Orchestrator, error) {
	switch {
	case g == nil:
		return nil, errors.New("engine: nil governor")
	case d == nil:
		return nil, errors.New("engine: nil detector")
	case data == nil || eq == nil:
		return nil, errors.New("engine: market data and equity source are required")
	case s.Symbol == "":
		return nil, errors.New("engine: symbol is required")
	case s.CandleLimit <= 0:
		return nil, fmt.Errorf("engine: candle limit must be positive, got %d", s.CandleLimit)
	case s.RiskPerTrade <= 0 || s.RiskPerTrade > 1:
		return nil, fmt.Errorf("engine: risk per trade must be in (0,1], got %v", s.RiskPerTrade)
	}

	o := &Orchestrator{
		settings: s,
		governor: g,
		detector: d,
		data:     data,
		equity:   eq,
		journal:  journal.Discard{},
		notifier: notify.BestEffort(nil),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Orchestrator) Governor() *risk.Governor { return o.governor }
func (o *Orchestrator) Settings() Settings       { return o.settings }

// Cycle runs one decision cycle at now and returns exactly one outcome.
// Both fetches happen before any state changes, so a failed fetch leaves
// the governor exactly as it was.
func (o *Orchestrator) Cycle(ctx context.Context, now time.Time) Outcome {
	out := Outcome{ID: id.NewAt(now), Time: now}

	equity, err := o.equity.FetchEquity(ctx)
	if err != nil {
		return o.finish(o.unavailable(out, fmt.Errorf("fetch equity: %w", err)))
	}
	s := o.settings
	candles, err := o.data.FetchCandles(ctx, s.Symbol, s.Timeframe, s.CandleLimit)
	var cs *market.CandleSet
	if err == nil {
		cs, err = market.NewCandleSet(s.Symbol, s.Timeframe, candles)
	}
	if err == nil {
		err = strategies.Enough(o.detector, candles)
	}
	if err != nil {
		return o.finish(o.unavailable(out, fmt.Errorf("fetch candles: %w", err)))
	}

	dec := o.governor.Evaluate(equity, now)
	out.Decision = &dec
	o.observe(ctx, dec)
	if !dec.Permitted() {
		out.Kind = Blocked
		out.Reason = dec.Reason
		return o.finish(out)
	}

	out.Sentiment = o.score(ctx)
	sig, err := o.detector.Detect(cs.Candles, out.Sentiment)
	if err != nil {
		// Too few candles (or an empty indicator window) means the data
		// source did not deliver enough history.
		return o.finish(o.unavailable(out, fmt.Errorf("detect: %w", err)))
	}
	if sig == market.None {
		out.Kind = NoAction
		out.Reason = ReasonNoSetup
		return o.finish(out)
	}

	size, err := risk.Size(equity, s.RiskPerTrade, s.StopDistance)
	if err != nil {
		out.Kind = NoAction
		out.Reason = ReasonInvalidStopDistance
		out.Err = err
		return o.finish(out)
	}

	entry := cs.Last().Close
	if r := o.governor.Policy().Rules; r != nil && r.Leverage > 0 {
		var capped bool
		if size, capped = risk.CapByLeverage(size, entry, equity, r.Leverage); capped {
			logger.Infof("size capped by %d:1 leverage to %.2f", r.Leverage, size)
		}
	}
	if size <= 0 {
		out.Kind = NoAction
		out.Reason = ReasonZeroSize
		return o.finish(out)
	}

	stop, target := market.Brackets(sig, entry, s.StopDistance, s.TargetDistance)
	intent := market.OrderIntent{
		ID:         id.NewAt(now),
		Time:       now,
		Symbol:     s.Symbol,
		Signal:     sig,
		Size:       size,
		Entry:      entry,
		StopLoss:   stop,
		TakeProfit: target,
		Reason:     fmt.Sprintf("%s %s", o.detector.Name(), sig),
	}
	o.governor.Tracker().RecordTrade(intent)
	logger.Debugf("intent %s risks %.2f at %.2f R:R", intent.ID, risk.RiskAmount(size, s.StopDistance), risk.RR(entry, stop, target))

	out.Kind = Order
	out.Reason = sig.String()
	out.Intent = &intent
	return o.finish(out)
}

func (o *Orchestrator) unavailable(out Outcome, err error) Outcome {
	out.Kind = NoAction
	out.Reason = ReasonDataUnavailable
	out.Err = err
	if o.metrics != nil {
		o.metrics.RecordError(ReasonDataUnavailable)
	}
	return out
}

func (o *Orchestrator) score(ctx context.Context) float64 {
	if o.scorer == nil || !strategies.UsesSentiment(o.detector) {
		return 0
	}
	v, err := o.scorer.Score(ctx, o.settings.SentimentText)
	if err != nil {
		logger.Warnf("sentiment unavailable, using neutral: %v", err)
		return 0
	}
	return sentiment.Clamp(v)
}

// observe persists and publishes a governor decision.
func (o *Orchestrator) observe(ctx context.Context, dec risk.Decision) {
	if err := o.journal.RecordAudit(dec.Audit); err != nil {
		logger.Errorf("journal audit: %v", err)
	}
	if dec.Snapshot != nil {
		logger.Infof("daily reset: equity %.2f", dec.Snapshot.Equity)
		if err := o.journal.RecordSnapshot(*dec.Snapshot); err != nil {
			logger.Errorf("journal snapshot: %v", err)
		}
	}

	st := dec.State
	if o.metrics != nil {
		o.metrics.UpdateRisk(st.CurrentEquity, st.PeakEquity, st.DailyPL, dec.Permitted())
	}

	if dec.Transition {
		if dec.Permitted() {
			logger.Infof("trading re-enabled: equity %.2f", st.CurrentEquity)
			_ = o.notifier.Notify(ctx, fmt.Sprintf("Trading re-enabled at equity %.2f", st.CurrentEquity))
		} else {
			logger.Warnf("trading disabled: %s", dec.Detail)
			_ = o.notifier.Notify(ctx, fmt.Sprintf("Trading disabled: %s", dec.Detail))
		}
	}
	if dec.TargetReached && !o.targetNotified {
		o.targetNotified = true
		_ = o.notifier.Notify(ctx, fmt.Sprintf("Profit target reached: equity %.2f", st.CurrentEquity))
	}
}

func (o *Orchestrator) finish(out Outcome) Outcome {
	if err := o.journal.RecordOutcome(out.Record()); err != nil {
		logger.Errorf("journal outcome: %v", err)
	}
	if o.metrics != nil {
		o.metrics.RecordCycle(out.Label())
		if in := out.Intent; in != nil {
			o.metrics.RecordIntent(in.Symbol, in.Signal.Side(), in.Size)
		}
	}

	switch out.Kind {
	case Order:
		logger.L().Info("cycle", "id", out.ID, "outcome", out.String())
	case Blocked:
		logger.L().Warn("cycle", "id", out.ID, "outcome", out.String())
	default:
		if out.Err != nil {
			logger.L().Warn("cycle", "id", out.ID, "outcome", out.String())
		} else {
			logger.L().Debug("cycle", "id", out.ID, "outcome", out.String())
		}
	}
	return out
}

// Execute hands an Order outcome to the executor. Rejections are logged,
// journaled and alerted; they never touch risk state. Non-order outcomes
// are ignored.
func (o *Orchestrator) Execute(ctx context.Context, exec broker.OrderExecutor, out Outcome) (broker.OrderResult, error) {
	if out.Kind != Order || out.Intent == nil || exec == nil {
		return broker.OrderResult{}, nil
	}
	in := *out.Intent

	res, err := exec.PlaceOrder(ctx, in)
	if err == nil && !res.Accepted {
		err = fmt.Errorf("%w: %s", broker.ErrOrderRejected, res.Message)
	}
	if err != nil {
		logger.Errorf("order %s rejected: %v", in.ID, err)
		if o.metrics != nil {
			o.metrics.RecordError(ReasonOrderRejected)
		}
		rec := out.Record()
		rec.CycleID = id.New()
		rec.Time = time.Now()
		rec.Kind = ReasonOrderRejected
		rec.Detail = err.Error()
		if jerr := o.journal.RecordOutcome(rec); jerr != nil {
			logger.Errorf("journal outcome: %v", jerr)
		}
		_ = o.notifier.Notify(ctx, fmt.Sprintf("Order rejected: %s %.2f %s: %v", in.Signal.Side(), in.Size, in.Symbol, err))
		return res, err
	}

	logger.Infof("order %s filled: ref=%s", in.ID, res.BrokerRef)
	_ = o.notifier.Notify(ctx, fmt.Sprintf("Executed %s %.2f %s due to %s", in.Signal.Side(), in.Size, in.Symbol, in.Reason))
	return res, nil
}
