package indicators

import "github.com/rustyeddy/propguard/market"

// VWAP returns the cumulative volume weighted average price at every candle.
//
// typical = (high+low+close)/3, vwap[i] = sum(typical*volume) / sum(volume)
// over candles[0..i]. While cumulative volume is still zero the typical price
// is used so the series never divides by zero.
func VWAP(candles []market.Candle) []float64 {
	out := make([]float64, len(candles))
	var cumPV, cumVol float64
	for i, c := range candles {
		tp := c.TypicalPrice()
		cumPV += tp * c.Volume
		cumVol += c.Volume
		if cumVol == 0 {
			out[i] = tp
			continue
		}
		out[i] = cumPV / cumVol
	}
	return out
}
