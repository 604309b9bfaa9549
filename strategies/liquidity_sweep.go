package strategies

import (
	"fmt"

	"github.com/rustyeddy/propguard/indicators"
	"github.com/rustyeddy/propguard/market"
)

// SweepLookback is the number of candles before the current one that define
// the recent high/low extremes.
const SweepLookback = 4

// LiquiditySweep looks for the latest candle running stops beyond the recent
// range and then closing back on the other side of VWAP.
//
//   - high > max(high of previous 4) + margin -> short candidate
//   - low  < min(low of previous 4) - margin  -> long candidate
//
// A short candidate needs close < VWAP, a long candidate close > VWAP. The
// high breach is tested first and alone decides which VWAP side is checked.
type LiquiditySweep struct {
	ZoneMargin   float64
	VWAPLookback int
}

func (s *LiquiditySweep) Name() string { return "liquidity-sweep" }

func (s *LiquiditySweep) MinCandles() int { return SweepLookback + 1 }

func (s *LiquiditySweep) Detect(candles []market.Candle, _ float64) (market.Signal, error) {
	grab, err := s.Grab(candles)
	if err != nil || grab == market.None {
		return market.None, err
	}

	window := candles
	if s.VWAPLookback > 0 && s.VWAPLookback < len(candles) {
		window = candles[len(candles)-s.VWAPLookback:]
	}
	vwap := indicators.VWAP(window)
	return confirm(grab, candles[len(candles)-1].Close, vwap[len(vwap)-1]), nil
}

// Grab returns the sweep direction before VWAP confirmation.
func (s *LiquiditySweep) Grab(candles []market.Candle) (market.Signal, error) {
	if len(candles) < SweepLookback+1 {
		return market.None, fmt.Errorf("%w: need %d, got %d", ErrNotEnoughCandles, SweepLookback+1, len(candles))
	}

	cur := candles[len(candles)-1]
	prev := candles[len(candles)-1-SweepLookback : len(candles)-1]

	prevHigh, prevLow := prev[0].High, prev[0].Low
	for _, c := range prev[1:] {
		if c.High > prevHigh {
			prevHigh = c.High
		}
		if c.Low < prevLow {
			prevLow = c.Low
		}
	}

	switch {
	case cur.High > prevHigh+s.ZoneMargin:
		return market.Short, nil
	case cur.Low < prevLow-s.ZoneMargin:
		return market.Long, nil
	default:
		return market.None, nil
	}
}

func confirm(grab market.Signal, close, vwap float64) market.Signal {
	switch {
	case grab == market.Short && close < vwap:
		return market.Short
	case grab == market.Long && close > vwap:
		return market.Long
	default:
		return market.None
	}
}
