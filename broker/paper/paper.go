// Package paper is an in-memory broker that replays candles from a file and
// fills orders at the last close. It backs --paper runs and tests.
package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/propguard/broker"
	"github.com/rustyeddy/propguard/market"
	"github.com/rustyeddy/propguard/pkg/id"
)

// Trade is one paper position.
type Trade struct {
	ID         string
	Intent     market.OrderIntent
	EntryPrice float64
	ExitPrice  float64
	Open       bool
	PL         float64
}

// Broker replays a fixed candle series for one symbol. Only candles up to the
// cursor are visible; Advance moves the cursor forward one bar.
type Broker struct {
	mu      sync.Mutex
	symbol  string
	candles []market.Candle
	pos     int

	balance float64
	trades  []*Trade
}

var _ broker.Broker = (*Broker)(nil)

// New builds a paper broker starting with the first warmup candles visible.
func New(symbol string, candles []market.Candle, balance float64, warmup int) (*Broker, error) {
	if err := market.Validate(candles); err != nil {
		return nil, err
	}
	if warmup < 1 {
		warmup = 1
	}
	if warmup > len(candles) {
		warmup = len(candles)
	}
	return &Broker{symbol: symbol, candles: candles, pos: warmup, balance: balance}, nil
}

// Advance reveals the next candle and settles any open trade whose stop or
// target it touched. It reports false once the series is exhausted.
func (b *Broker) Advance() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pos >= len(b.candles) {
		return false
	}
	c := b.candles[b.pos]
	b.pos++
	b.settle(c)
	return true
}

func (b *Broker) settle(c market.Candle) {
	for _, t := range b.trades {
		if !t.Open {
			continue
		}
		in := t.Intent
		exit, hit := 0.0, false
		switch in.Signal {
		case market.Long:
			// Stop wins when one bar touches both.
			if c.Low <= in.StopLoss {
				exit, hit = in.StopLoss, true
			} else if c.High >= in.TakeProfit {
				exit, hit = in.TakeProfit, true
			}
		case market.Short:
			if c.High >= in.StopLoss {
				exit, hit = in.StopLoss, true
			} else if c.Low <= in.TakeProfit {
				exit, hit = in.TakeProfit, true
			}
		}
		if !hit {
			continue
		}
		t.Open = false
		t.ExitPrice = exit
		t.PL = in.Signal.Dir() * in.Size * (exit - t.EntryPrice)
		b.balance += t.PL
	}
}

// FetchCandles returns up to limit visible candles, oldest first.
func (b *Broker) FetchCandles(_ context.Context, symbol, _ string, limit int) ([]market.Candle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if symbol != b.symbol {
		return nil, fmt.Errorf("%w: paper feed has no %q", broker.ErrDataUnavailable, symbol)
	}
	start := 0
	if limit > 0 && b.pos > limit {
		start = b.pos - limit
	}
	out := make([]market.Candle, b.pos-start)
	copy(out, b.candles[start:b.pos])
	return out, nil
}

// FetchEquity returns balance plus open P/L marked at the last visible close.
func (b *Broker) FetchEquity(context.Context) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.equity(), nil
}

func (b *Broker) equity() float64 {
	eq := b.balance
	last := b.candles[b.pos-1].Close
	for _, t := range b.trades {
		if t.Open {
			eq += t.Intent.Signal.Dir() * t.Intent.Size * (last - t.EntryPrice)
		}
	}
	return eq
}

// PlaceOrder fills the intent at the last visible close.
func (b *Broker) PlaceOrder(_ context.Context, in market.OrderIntent) (broker.OrderResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if in.Symbol != b.symbol {
		return broker.OrderResult{Message: "unknown symbol"}, fmt.Errorf("%w: unknown symbol %q", broker.ErrOrderRejected, in.Symbol)
	}
	if in.Signal == market.None || in.Size <= 0 {
		return broker.OrderResult{Message: "empty order"}, fmt.Errorf("%w: empty order", broker.ErrOrderRejected)
	}

	t := &Trade{
		ID:         id.New(),
		Intent:     in,
		EntryPrice: b.candles[b.pos-1].Close,
		Open:       true,
	}
	b.trades = append(b.trades, t)
	return broker.OrderResult{Accepted: true, BrokerRef: t.ID}, nil
}

// Now is the open time of the last visible candle. Replays use it as the
// cycle clock so daily rollovers follow the data, not the wall clock.
func (b *Broker) Now() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.candles[b.pos-1].Time
}

// SetBalance overrides the realized balance.
func (b *Broker) SetBalance(v float64) {
	b.mu.Lock()
	b.balance = v
	b.mu.Unlock()
}

// Trades returns a copy of every trade placed so far.
func (b *Broker) Trades() []Trade {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Trade, len(b.trades))
	for i, t := range b.trades {
		out[i] = *t
	}
	return out
}
