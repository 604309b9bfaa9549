package indicators

import (
	"testing"
	"time"

	"github.com/rustyeddy/propguard/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCandles() []market.Candle {
	start := time.Date(2025, 1, 6, 14, 0, 0, 0, time.UTC)
	raw := []struct{ h, l, c, v float64 }{
		{105, 99, 102, 10},
		{107, 101, 105, 20},
		{108, 104, 106, 10},
		{110, 105, 108, 30},
		{112, 107, 110, 10},
	}
	out := make([]market.Candle, len(raw))
	for i, r := range raw {
		out[i] = market.Candle{
			Time:   start.Add(time.Duration(i) * 5 * time.Minute),
			Open:   r.c - 1,
			High:   r.h,
			Low:    r.l,
			Close:  r.c,
			Volume: r.v,
		}
	}
	return out
}

func TestVWAP(t *testing.T) {
	t.Parallel()

	candles := createTestCandles()
	got := VWAP(candles)
	require.Len(t, got, len(candles))

	// First bar: typical price of bar 0.
	assert.InDelta(t, (105.0+99+102)/3, got[0], 1e-9)

	var pv, vol float64
	for _, c := range candles {
		pv += c.TypicalPrice() * c.Volume
		vol += c.Volume
	}
	assert.InDelta(t, pv/vol, got[len(got)-1], 1e-9)
}

func TestVWAPZeroVolume(t *testing.T) {
	t.Parallel()

	candles := []market.Candle{{High: 12, Low: 6, Close: 9}}
	got := VWAP(candles)
	assert.InDelta(t, 9.0, got[0], 1e-12)
}

func TestEMA(t *testing.T) {
	t.Parallel()

	values := []float64{10, 11, 12, 13}
	got := EMA(values, 3)
	require.Len(t, got, 4)

	// alpha = 0.5
	assert.InDelta(t, 10.0, got[0], 1e-12)
	assert.InDelta(t, 10.5, got[1], 1e-12)
	assert.InDelta(t, 11.25, got[2], 1e-12)
	assert.InDelta(t, 12.125, got[3], 1e-12)

	assert.Nil(t, EMA(values, 0))
	assert.Nil(t, EMA(nil, 3))
}

func TestAlpha(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0/21.0, Alpha(20), 1e-12)
	assert.InDelta(t, 1.0, Alpha(1), 1e-12)
}

func TestComputeDeterministic(t *testing.T) {
	t.Parallel()

	candles := createTestCandles()
	s := Settings{EMAPeriod: 3}

	a, err := Compute(candles, s)
	require.NoError(t, err)
	b, err := Compute(candles, s)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 110.0, a.Close)
	assert.Equal(t, candles[4].Time, a.Time)
}

func TestComputeLookback(t *testing.T) {
	t.Parallel()

	candles := createTestCandles()
	snap, err := Compute(candles, Settings{EMAPeriod: 3, VWAPLookback: 1})
	require.NoError(t, err)
	assert.InDelta(t, candles[4].TypicalPrice(), snap.VWAP, 1e-9)
}

func TestComputeErrors(t *testing.T) {
	t.Parallel()

	_, err := Compute(nil, Settings{EMAPeriod: 3})
	assert.ErrorIs(t, err, market.ErrEmptyCandles)

	_, err = Compute(createTestCandles(), Settings{})
	assert.Error(t, err)
}
