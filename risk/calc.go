package risk

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidStopDistance is returned when sizing is asked for a stop at or
// inside the entry price.
var ErrInvalidStopDistance = errors.New("risk: invalid stop distance")

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Size converts a risk budget into an order size:
//
//	size = round(equity * riskPct / stopDistance, 2)
//
// Rounding is half away from zero. A negative result is floored at 0.
func Size(equity, riskPct, stopDistance float64) (float64, error) {
	if stopDistance <= 0 || math.IsNaN(stopDistance) || math.IsInf(stopDistance, 0) {
		return 0, ErrInvalidStopDistance
	}
	amt := decimal.NewFromFloat(equity).Mul(decimal.NewFromFloat(riskPct))
	size := amt.Div(decimal.NewFromFloat(stopDistance)).Round(2)
	if size.IsNegative() {
		return 0, nil
	}
	return size.InexactFloat64(), nil
}

// RiskAmount is the cash put at risk by a trade of size with the given stop distance.
func RiskAmount(size, stopDistance float64) float64 {
	return decimal.NewFromFloat(size).Mul(decimal.NewFromFloat(stopDistance)).Round(2).InexactFloat64()
}

// CapByLeverage limits size so that size*entry does not exceed
// equity*leverage. It reports whether the cap applied. A leverage of 0
// disables the cap.
func CapByLeverage(size, entry, equity float64, leverage int) (float64, bool) {
	if leverage <= 0 || entry <= 0 || equity <= 0 {
		return size, false
	}
	limit := decimal.NewFromFloat(equity).
		Mul(decimal.NewFromInt(int64(leverage))).
		Div(decimal.NewFromFloat(entry)).
		Truncate(2)
	if decimal.NewFromFloat(size).GreaterThan(limit) {
		return limit.InexactFloat64(), true
	}
	return size, false
}

// RR returns the reward to risk multiple of a bracket.
func RR(entry, stop, takeProfit float64) float64 {
	risk := abs(entry - stop)
	reward := abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}
