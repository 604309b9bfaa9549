// Package indicators computes VWAP and EMA over a candle window.
//
// Everything here is a pure function of its input. Nothing is carried between
// calls, so the same window always produces the same values.
package indicators

import (
	"fmt"
	"time"

	"github.com/rustyeddy/propguard/market"
)

// Settings controls which window each indicator sees.
type Settings struct {
	EMAPeriod int
	// VWAPLookback limits VWAP to the last N candles; 0 uses the whole window.
	VWAPLookback int
}

// Snapshot holds the indicator values attached to the latest candle.
type Snapshot struct {
	Time  time.Time
	Close float64
	VWAP  float64
	EMA   float64
}

// Compute recomputes every indicator from scratch over candles.
func Compute(candles []market.Candle, s Settings) (Snapshot, error) {
	if len(candles) == 0 {
		return Snapshot{}, market.ErrEmptyCandles
	}
	if s.EMAPeriod <= 0 {
		return Snapshot{}, fmt.Errorf("ema period must be positive, got %d", s.EMAPeriod)
	}

	window := candles
	if s.VWAPLookback > 0 && s.VWAPLookback < len(candles) {
		window = candles[len(candles)-s.VWAPLookback:]
	}
	vwap := VWAP(window)

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	ema := EMA(closes, s.EMAPeriod)

	last := candles[len(candles)-1]
	return Snapshot{
		Time:  last.Time,
		Close: last.Close,
		VWAP:  vwap[len(vwap)-1],
		EMA:   ema[len(ema)-1],
	}, nil
}
