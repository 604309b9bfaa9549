package engine

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rustyeddy/propguard/broker"
	"github.com/rustyeddy/propguard/broker/paper"
	"github.com/rustyeddy/propguard/journal"
	"github.com/rustyeddy/propguard/market"
	"github.com/rustyeddy/propguard/monitoring"
	"github.com/rustyeddy/propguard/risk"
	"github.com/rustyeddy/propguard/sentiment"
	"github.com/rustyeddy/propguard/strategies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	candles   []market.Candle
	candleErr error
	equity    float64
	equityErr error
}

func (f *fakeFeed) FetchCandles(context.Context, string, string, int) ([]market.Candle, error) {
	return f.candles, f.candleErr
}

func (f *fakeFeed) FetchEquity(context.Context) (float64, error) {
	return f.equity, f.equityErr
}

type fakeScorer struct {
	v     float64
	err   error
	calls int
}

func (s *fakeScorer) Score(context.Context, string) (float64, error) {
	s.calls++
	return s.v, s.err
}

type memJournal struct {
	audits   []risk.AuditRecord
	snaps    []risk.EquitySnapshot
	outcomes []journal.OutcomeRecord
}

func (m *memJournal) RecordAudit(r risk.AuditRecord) error {
	m.audits = append(m.audits, r)
	return nil
}

func (m *memJournal) RecordSnapshot(s risk.EquitySnapshot) error {
	m.snaps = append(m.snaps, s)
	return nil
}

func (m *memJournal) RecordOutcome(o journal.OutcomeRecord) error {
	m.outcomes = append(m.outcomes, o)
	return nil
}

func (m *memJournal) Close() error { return nil }

type memNotifier struct{ msgs []string }

func (n *memNotifier) Notify(_ context.Context, msg string) error {
	n.msgs = append(n.msgs, msg)
	return errors.New("delivery is best effort")
}

type fakeExec struct {
	res broker.OrderResult
	err error
	got []market.OrderIntent
}

func (e *fakeExec) PlaceOrder(_ context.Context, in market.OrderIntent) (broker.OrderResult, error) {
	e.got = append(e.got, in)
	return e.res, e.err
}

var base = time.Date(2025, 4, 1, 14, 0, 0, 0, time.UTC)

// trend returns n candles whose closes move by step from start.
func trend(start, step float64, n int) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		c := start + float64(i)*step
		out[i] = market.Candle{Time: base.Add(time.Duration(i-n) * 5 * time.Minute), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10}
	}
	return out
}

func testPolicy() risk.Policy {
	return risk.Policy{
		AccountSize:         100000,
		TrailingDrawdownPct: 0.05,
		DailyMaxLossPct:     0.03,
		ResetHour:           21,
	}
}

func testSettings() Settings {
	return Settings{
		Symbol:         "NAS100_USD",
		Timeframe:      "M5",
		CandleLimit:    100,
		RiskPerTrade:   0.01,
		StopDistance:   100,
		TargetDistance: 150,
		SentimentText:  "tech earnings beat",
	}
}

type harness struct {
	o     *Orchestrator
	feed  *fakeFeed
	j     *memJournal
	n     *memNotifier
	score *fakeScorer
}

func newHarness(t *testing.T, p risk.Policy, s Settings, d strategies.Detector, opts ...Option) *harness {
	t.Helper()
	g, err := risk.NewGovernor(p)
	require.NoError(t, err)

	h := &harness{
		feed:  &fakeFeed{candles: trend(1000, 1, 30), equity: 100000},
		j:     &memJournal{},
		n:     &memNotifier{},
		score: &fakeScorer{v: 0.5},
	}
	opts = append([]Option{WithJournal(h.j), WithNotifier(h.n), WithSentiment(h.score)}, opts...)
	h.o, err = New(s, g, d, h.feed, h.feed, opts...)
	require.NoError(t, err)
	return h
}

func TestCycleEmitsOrder(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), &strategies.EMASentiment{Period: 5})

	out := h.o.Cycle(context.Background(), base)
	require.Equal(t, Order, out.Kind, out.String())
	require.NotNil(t, out.Intent)
	assert.Equal(t, "long", out.Reason)
	assert.Equal(t, 0.5, out.Sentiment)

	in := out.Intent
	assert.Equal(t, "NAS100_USD", in.Symbol)
	assert.Equal(t, market.Long, in.Signal)
	assert.Equal(t, 10.0, in.Size)
	assert.Equal(t, 1029.0, in.Entry)
	assert.Equal(t, 929.0, in.StopLoss)
	assert.Equal(t, 1179.0, in.TakeProfit)
	assert.Equal(t, "ema-sentiment(5) long", in.Reason)
	assert.NotEmpty(t, in.ID)
	assert.NotEqual(t, out.ID, in.ID)

	assert.Len(t, h.o.Governor().Tracker().TradesToday(), 1)
	require.Len(t, h.j.audits, 1)
	assert.True(t, h.j.audits[0].Permitted)
	require.Len(t, h.j.outcomes, 1)
	assert.Equal(t, "order", h.j.outcomes[0].Kind)
	assert.Equal(t, in.ID, h.j.outcomes[0].IntentID)
	assert.Empty(t, h.n.msgs)
}

func TestCycleShortBrackets(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), &strategies.EMASentiment{Period: 5})
	h.feed.candles = trend(1030, -1, 30)
	h.score.v = -0.5

	out := h.o.Cycle(context.Background(), base)
	require.Equal(t, Order, out.Kind)
	assert.Equal(t, market.Short, out.Intent.Signal)
	assert.Equal(t, 1001.0, out.Intent.Entry)
	assert.Equal(t, 1101.0, out.Intent.StopLoss)
	assert.Equal(t, 851.0, out.Intent.TakeProfit)
}

func TestCycleDataUnavailableIsAtomic(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeFeed)
	}{
		{"equity", func(f *fakeFeed) { f.equityErr = broker.ErrDataUnavailable }},
		{"candles", func(f *fakeFeed) { f.equity = 120000; f.candleErr = broker.ErrDataUnavailable }},
		{"unordered candles", func(f *fakeFeed) {
			f.equity = 120000
			f.candles[3].Time = f.candles[2].Time
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testPolicy(), testSettings(), &strategies.EMASentiment{Period: 5})
			before := h.o.Governor().Tracker().State()
			tt.mutate(h.feed)

			out := h.o.Cycle(context.Background(), base)
			assert.Equal(t, NoAction, out.Kind)
			assert.Equal(t, ReasonDataUnavailable, out.Reason)
			assert.Error(t, out.Err)
			assert.Nil(t, out.Decision)

			assert.Equal(t, before, h.o.Governor().Tracker().State())
			assert.Empty(t, h.j.audits)
			require.Len(t, h.j.outcomes, 1)
			assert.Equal(t, ReasonDataUnavailable, h.j.outcomes[0].Reason)
			assert.Zero(t, h.score.calls)
		})
	}
}

func TestCycleBlocked(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), &strategies.EMASentiment{Period: 5})
	h.feed.equity = 94000

	out := h.o.Cycle(context.Background(), base)
	assert.Equal(t, Blocked, out.Kind)
	assert.Equal(t, risk.ReasonTrailing, out.Reason)
	require.NotNil(t, out.Decision)
	assert.False(t, out.Decision.Permitted())
	assert.Zero(t, h.score.calls, "sentiment is not consulted when blocked")

	require.Len(t, h.n.msgs, 1)
	assert.Contains(t, h.n.msgs[0], "Trading disabled: trailing drawdown hit")
	assert.Contains(t, h.j.outcomes[0].Detail, "94000.00 <= 95000.00")

	// Recovery without latching re-enables and alerts once.
	h.feed.equity = 99000
	out = h.o.Cycle(context.Background(), base.Add(5*time.Minute))
	assert.Equal(t, Order, out.Kind)
	require.Len(t, h.n.msgs, 2)
	assert.Contains(t, h.n.msgs[1], "re-enabled")
}

func TestCycleLatchedStaysBlocked(t *testing.T) {
	p := testPolicy()
	p.LatchOnBreach = true
	h := newHarness(t, p, testSettings(), &strategies.EMASentiment{Period: 5})

	h.feed.equity = 94000
	assert.Equal(t, Blocked, h.o.Cycle(context.Background(), base).Kind)

	h.feed.equity = 99000
	out := h.o.Cycle(context.Background(), base.Add(5*time.Minute))
	assert.Equal(t, Blocked, out.Kind)
	assert.Equal(t, risk.ReasonTrailing, out.Reason)
	assert.True(t, out.Decision.Latched)
	assert.Len(t, h.n.msgs, 1)
}

func TestCycleNoSetup(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), &strategies.EMASentiment{Period: 5})
	h.score.v = 0

	out := h.o.Cycle(context.Background(), base)
	assert.Equal(t, NoAction, out.Kind)
	assert.Equal(t, ReasonNoSetup, out.Reason)
	assert.Nil(t, out.Intent)
	assert.Empty(t, h.o.Governor().Tracker().TradesToday())
}

func TestCycleSentimentFailureIsNeutral(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), &strategies.EMASentiment{Period: 5})
	h.score.err = errors.New("model loading")

	out := h.o.Cycle(context.Background(), base)
	assert.Equal(t, ReasonNoSetup, out.Reason)
	assert.Equal(t, 1, h.score.calls)
}

func TestCycleWithoutScorer(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), &strategies.EMASentiment{Period: 5}, WithSentiment(nil))
	out := h.o.Cycle(context.Background(), base)
	assert.Equal(t, ReasonNoSetup, out.Reason)
	assert.Zero(t, h.score.calls)
}

func TestCycleInvalidStopDistance(t *testing.T) {
	s := testSettings()
	s.StopDistance = 0
	h := newHarness(t, testPolicy(), s, &strategies.EMASentiment{Period: 5})

	out := h.o.Cycle(context.Background(), base)
	assert.Equal(t, NoAction, out.Kind)
	assert.Equal(t, ReasonInvalidStopDistance, out.Reason)
	assert.ErrorIs(t, out.Err, risk.ErrInvalidStopDistance)

	// Risk state was evaluated but not otherwise touched.
	assert.Len(t, h.j.audits, 1)
	assert.Empty(t, h.o.Governor().Tracker().TradesToday())
}

func TestCycleNotEnoughCandles(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), &strategies.LiquiditySweep{ZoneMargin: 50})
	h.feed.candles = trend(1000, 1, 3)
	h.feed.equity = 120000
	tr := h.o.Governor().Tracker()

	// Past the reset hour, so an evaluation would also roll the day.
	out := h.o.Cycle(context.Background(), base.Add(23*time.Hour))
	assert.Equal(t, NoAction, out.Kind)
	assert.Equal(t, ReasonDataUnavailable, out.Reason)
	assert.ErrorIs(t, out.Err, strategies.ErrNotEnoughCandles)
	assert.Nil(t, out.Decision)
	assert.Zero(t, h.score.calls, "sweep detector ignores sentiment")

	assert.Equal(t, 100000.0, tr.Peak())
	assert.Zero(t, tr.DailyPL())
	assert.Empty(t, tr.Snapshots())
	assert.Empty(t, h.j.audits)
	assert.Empty(t, h.j.snaps)
	require.Len(t, h.j.outcomes, 1)
	assert.Equal(t, "no_action", h.j.outcomes[0].Kind)
}

func TestCycleLiquiditySweepShort(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), &strategies.LiquiditySweep{ZoneMargin: 5})
	c := trend(1000, 0, 5)
	// Wick far above the prior highs, closing back below VWAP.
	c[4].High = c[3].High + 5 + 1 + 50
	c[4].Low = 989
	c[4].Close = 990
	h.feed.candles = c

	out := h.o.Cycle(context.Background(), base)
	require.Equal(t, Order, out.Kind, out.String())
	assert.Equal(t, market.Short, out.Intent.Signal)
	assert.Equal(t, 990.0, out.Intent.Entry)
}

func TestCycleLeverageCap(t *testing.T) {
	p := testPolicy()
	p.Rules = &risk.RuleSet{AccountSize: 100000, Leverage: 1, DailyLoss: 5000, TotalDrawdown: 10000}
	s := testSettings()
	s.StopDistance = 1
	h := newHarness(t, p, s, &strategies.EMASentiment{Period: 5})
	h.feed.candles = trend(100, 0.5, 21)

	out := h.o.Cycle(context.Background(), base)
	require.Equal(t, Order, out.Kind)
	assert.Equal(t, 110.0, out.Intent.Entry)
	assert.Equal(t, 909.09, out.Intent.Size)
}

func TestCycleProfitTargetAlertsOnce(t *testing.T) {
	p := testPolicy()
	p.Rules = &risk.RuleSet{AccountSize: 100000, Leverage: 100, DailyLoss: 5000, TotalDrawdown: 10000, ProfitTarget: 10000}
	h := newHarness(t, p, testSettings(), &strategies.EMASentiment{Period: 5})
	h.feed.equity = 110000

	h.o.Cycle(context.Background(), base)
	h.o.Cycle(context.Background(), base.Add(5*time.Minute))
	require.Len(t, h.n.msgs, 1)
	assert.Contains(t, h.n.msgs[0], "Profit target reached")
}

func TestCycleDailyRolloverJournaled(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), &strategies.EMASentiment{Period: 5})
	reset := time.Date(2025, 4, 1, 21, 0, 0, 0, time.UTC)

	h.o.Cycle(context.Background(), reset)
	h.o.Cycle(context.Background(), reset.Add(time.Hour))
	require.Len(t, h.j.snaps, 1)
	assert.Equal(t, 100000.0, h.j.snaps[0].Equity)
	assert.Len(t, h.j.audits, 2)
}

func TestCycleMetrics(t *testing.T) {
	m := monitoring.New(nil)
	h := newHarness(t, testPolicy(), testSettings(), &strategies.EMASentiment{Period: 5}, WithMetrics(m))

	h.o.Cycle(context.Background(), base)
	h.feed.equityErr = broker.ErrDataUnavailable
	h.o.Cycle(context.Background(), base.Add(time.Minute))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `propguard_cycles_total{outcome="order"} 1`)
	assert.Contains(t, string(body), `propguard_cycles_total{outcome="data_unavailable"} 1`)
	assert.Contains(t, string(body), `propguard_order_intents_total{side="buy",symbol="NAS100_USD"} 1`)
	assert.Contains(t, string(body), "propguard_trading_enabled 1")
}

func TestExecute(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), &strategies.EMASentiment{Period: 5})
	out := h.o.Cycle(context.Background(), base)
	require.Equal(t, Order, out.Kind)

	exec := &fakeExec{res: broker.OrderResult{Accepted: true, BrokerRef: "42"}}
	res, err := h.o.Execute(context.Background(), exec, out)
	require.NoError(t, err)
	assert.Equal(t, "42", res.BrokerRef)
	require.Len(t, exec.got, 1)
	assert.Equal(t, *out.Intent, exec.got[0])
	require.Len(t, h.n.msgs, 1)
	assert.Contains(t, h.n.msgs[0], "Executed buy 10.00 NAS100_USD")
}

func TestExecuteRejected(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), &strategies.EMASentiment{Period: 5})
	out := h.o.Cycle(context.Background(), base)
	before := h.o.Governor().Tracker().State()

	exec := &fakeExec{res: broker.OrderResult{Message: "MARKET_HALTED"}}
	_, err := h.o.Execute(context.Background(), exec, out)
	assert.ErrorIs(t, err, broker.ErrOrderRejected)
	assert.Equal(t, before, h.o.Governor().Tracker().State())
	assert.Equal(t, risk.Enabled, h.o.Governor().Status())

	require.Len(t, h.j.outcomes, 2)
	assert.Equal(t, ReasonOrderRejected, h.j.outcomes[1].Kind)
	assert.NotEqual(t, h.j.outcomes[0].CycleID, h.j.outcomes[1].CycleID)
	assert.Contains(t, h.j.outcomes[1].Detail, "MARKET_HALTED")
	require.Len(t, h.n.msgs, 1)
	assert.Contains(t, h.n.msgs[0], "Order rejected")
}

func TestExecuteIgnoresNonOrders(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), &strategies.EMASentiment{Period: 5})
	exec := &fakeExec{}
	_, err := h.o.Execute(context.Background(), exec, Outcome{Kind: Blocked})
	assert.NoError(t, err)
	assert.Empty(t, exec.got)
}

func TestNewValidates(t *testing.T) {
	g, err := risk.NewGovernor(testPolicy())
	require.NoError(t, err)
	feed := &fakeFeed{}

	_, err = New(testSettings(), nil, strategies.Noop{}, feed, feed)
	assert.Error(t, err)
	_, err = New(testSettings(), g, nil, feed, feed)
	assert.Error(t, err)

	s := testSettings()
	s.RiskPerTrade = 2
	_, err = New(s, g, strategies.Noop{}, feed, feed)
	assert.Error(t, err)

	s = testSettings()
	s.CandleLimit = 0
	_, err = New(s, g, strategies.Noop{}, feed, feed)
	assert.Error(t, err)
}

func TestRunnerReplaysPaperFeed(t *testing.T) {
	candles := trend(1000, 1, 12)
	pb, err := paper.New("NAS100_USD", candles, 100000, 5)
	require.NoError(t, err)

	g, err := risk.NewGovernor(testPolicy())
	require.NoError(t, err)
	o, err := New(testSettings(), g, &strategies.EMASentiment{Period: 3}, pb, pb, WithSentiment(sentiment.Static(0.6)))
	require.NoError(t, err)

	var outs []Outcome
	r := &Runner{
		Orchestrator: o,
		Executor:     pb,
		Clock:        pb.Now,
		Step:         pb.Advance,
		OnOutcome:    func(out Outcome) { outs = append(outs, out) },
	}
	require.NoError(t, r.Run(context.Background()))

	assert.Len(t, outs, 8)
	for _, out := range outs {
		assert.Equal(t, Order, out.Kind, out.String())
	}
	assert.Len(t, pb.Trades(), 8)
	assert.Equal(t, candles[11].Time, outs[7].Time)
}

func TestRunnerStopsOnCancel(t *testing.T) {
	h := newHarness(t, testPolicy(), testSettings(), strategies.Noop{})
	ctx, cancel := context.WithCancel(context.Background())

	n := 0
	r := &Runner{
		Orchestrator: h.o,
		Interval:     time.Millisecond,
		OnOutcome: func(Outcome) {
			n++
			if n == 3 {
				cancel()
			}
		},
	}
	require.NoError(t, r.Run(ctx))
	assert.Equal(t, 3, n)
}
