package strategies

import (
	"fmt"

	"github.com/rustyeddy/propguard/indicators"
	"github.com/rustyeddy/propguard/market"
)

// EMASentiment buys when sentiment is positive and price closes above its EMA,
// and sells when sentiment is negative and price closes below it. A sentiment
// of exactly zero never signals.
type EMASentiment struct {
	Period int
}

func (s *EMASentiment) Name() string { return fmt.Sprintf("ema-sentiment(%d)", s.Period) }

func (s *EMASentiment) MinCandles() int { return 1 }

func (s *EMASentiment) Detect(candles []market.Candle, sentiment float64) (market.Signal, error) {
	if len(candles) == 0 {
		return market.None, fmt.Errorf("%w: need 1, got 0", ErrNotEnoughCandles)
	}
	snap, err := indicators.Compute(candles, indicators.Settings{EMAPeriod: s.Period})
	if err != nil {
		return market.None, fmt.Errorf("ema-sentiment: %w", err)
	}
	return Classify(sentiment, snap.Close, snap.EMA), nil
}

// Classify applies the sentiment/EMA rule to a single close.
func Classify(sentiment, close, ema float64) market.Signal {
	switch {
	case sentiment > 0 && close > ema:
		return market.Buy
	case sentiment < 0 && close < ema:
		return market.Sell
	default:
		return market.None
	}
}
