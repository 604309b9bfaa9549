package market

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyCandles is returned when a candle window carries no data.
	ErrEmptyCandles = errors.New("market: no candles")
	// ErrUnordered is returned when candle timestamps are not strictly increasing.
	ErrUnordered = errors.New("market: candles not strictly increasing")
)

// Candle represents OHLCV candlestick data for one bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// TypicalPrice is (high+low+close)/3.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// CandleSet is an ordered window of candles as returned by a market data source.
// A CandleSet is never mutated once built.
type CandleSet struct {
	Symbol    string
	Timeframe string
	Candles   []Candle
}

// NewCandleSet validates the ordering of candles and wraps them.
func NewCandleSet(symbol, timeframe string, candles []Candle) (*CandleSet, error) {
	if err := Validate(candles); err != nil {
		return nil, err
	}
	return &CandleSet{Symbol: symbol, Timeframe: timeframe, Candles: candles}, nil
}

// Validate checks that candles is non-empty and strictly increasing in time.
func Validate(candles []Candle) error {
	if len(candles) == 0 {
		return ErrEmptyCandles
	}
	for i := 1; i < len(candles); i++ {
		if !candles[i].Time.After(candles[i-1].Time) {
			return fmt.Errorf("%w: index %d (%s) <= index %d (%s)", ErrUnordered,
				i, candles[i].Time.Format(time.RFC3339), i-1, candles[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

func (cs *CandleSet) Len() int { return len(cs.Candles) }

// Last returns the most recent candle.
func (cs *CandleSet) Last() Candle {
	return cs.Candles[len(cs.Candles)-1]
}

// Closes returns the close series in timestamp order.
func (cs *CandleSet) Closes() []float64 {
	out := make([]float64, len(cs.Candles))
	for i, c := range cs.Candles {
		out[i] = c.Close
	}
	return out
}

// Tail returns the last n candles, or all of them when n <= 0 or n exceeds the window.
func (cs *CandleSet) Tail(n int) []Candle {
	if n <= 0 || n >= len(cs.Candles) {
		return cs.Candles
	}
	return cs.Candles[len(cs.Candles)-n:]
}
