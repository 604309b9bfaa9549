package strategies

import "github.com/rustyeddy/propguard/market"

// Noop never signals. Useful for running the risk governor alone.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) MinCandles() int { return 0 }

func (Noop) Detect([]market.Candle, float64) (market.Signal, error) {
	return market.None, nil
}
