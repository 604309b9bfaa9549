// Package broker defines the collaborators the decision cycle talks to:
// market data, account equity and order execution.
package broker

import (
	"context"
	"errors"

	"github.com/rustyeddy/propguard/market"
)

var (
	// ErrDataUnavailable marks a failed candle or equity fetch. The cycle
	// aborts without touching risk state.
	ErrDataUnavailable = errors.New("broker: data unavailable")
	// ErrOrderRejected marks an order the broker refused to fill.
	ErrOrderRejected = errors.New("broker: order rejected")
)

// MarketData supplies OHLCV candles in timestamp order.
type MarketData interface {
	FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]market.Candle, error)
}

// EquitySource reports the account's current equity.
type EquitySource interface {
	FetchEquity(ctx context.Context) (float64, error)
}

// OrderExecutor places an order for an intent. It is only ever called by
// the caller of the decision cycle, never by the cycle itself.
type OrderExecutor interface {
	PlaceOrder(ctx context.Context, in market.OrderIntent) (OrderResult, error)
}

// Broker is the full set of collaborators one adapter may provide.
type Broker interface {
	MarketData
	EquitySource
	OrderExecutor
}

// OrderResult is the broker's answer to PlaceOrder.
type OrderResult struct {
	Accepted  bool
	BrokerRef string
	Message   string
}
