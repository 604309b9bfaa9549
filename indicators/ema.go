package indicators

// Alpha is the span style smoothing factor 2/(period+1).
func Alpha(period int) float64 {
	return 2.0 / float64(period+1)
}

// EMA returns the exponential moving average series over values.
//
// The series is seeded with the first value (no SMA warmup) and updated in
// order: ema[i] = alpha*x[i] + (1-alpha)*ema[i-1]. A non-positive period
// returns nil.
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) == 0 {
		return nil
	}
	alpha := Alpha(period)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1.0-alpha)*out[i-1]
	}
	return out
}
