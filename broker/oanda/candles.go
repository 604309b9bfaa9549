package oanda

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/propguard/broker"
	"github.com/rustyeddy/propguard/market"
)

// MaxCount is the largest candle count OANDA serves per request.
const MaxCount = 5000

type candleData struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type apiCandle struct {
	Complete bool        `json:"complete"`
	Volume   int         `json:"volume"`
	Time     string      `json:"time"`
	Mid      *candleData `json:"mid,omitempty"`
}

type candlesResponse struct {
	Instrument  string      `json:"instrument"`
	Granularity string      `json:"granularity"`
	Candles     []apiCandle `json:"candles"`
}

// FetchCandles returns up to limit complete mid-price candles, oldest first.
// Any transport or decoding failure is reported as broker.ErrDataUnavailable.
func (c *Client) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]market.Candle, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: oanda: missing instrument", broker.ErrDataUnavailable)
	}
	if timeframe == "" {
		return nil, fmt.Errorf("%w: oanda: missing granularity", broker.ErrDataUnavailable)
	}
	if limit <= 0 || limit > MaxCount {
		return nil, fmt.Errorf("%w: oanda: count must be 1-%d, got %d", broker.ErrDataUnavailable, MaxCount, limit)
	}

	q := url.Values{}
	q.Set("price", "M")
	q.Set("granularity", timeframe)
	q.Set("count", strconv.Itoa(limit))

	var cr candlesResponse
	path := fmt.Sprintf("/v3/instruments/%s/candles", symbol)
	if err := c.do(ctx, "GET", path, q, nil, &cr); err != nil {
		return nil, fmt.Errorf("%w: %v", broker.ErrDataUnavailable, err)
	}

	candles := make([]market.Candle, 0, len(cr.Candles))
	for _, ac := range cr.Candles {
		if !ac.Complete || ac.Mid == nil {
			continue
		}
		cd, err := ac.toCandle()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", broker.ErrDataUnavailable, err)
		}
		candles = append(candles, cd)
	}

	if err := market.Validate(candles); err != nil {
		return nil, fmt.Errorf("%w: %v", broker.ErrDataUnavailable, err)
	}
	return candles, nil
}

func (ac apiCandle) toCandle() (market.Candle, error) {
	t, err := time.Parse(time.RFC3339Nano, ac.Time)
	if err != nil {
		return market.Candle{}, fmt.Errorf("parse time %s: %w", ac.Time, err)
	}
	vals := make([]float64, 4)
	for i, s := range []string{ac.Mid.O, ac.Mid.H, ac.Mid.L, ac.Mid.C} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return market.Candle{}, fmt.Errorf("parse price %q: %w", s, err)
		}
		vals[i] = v
	}
	return market.Candle{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: float64(ac.Volume),
	}, nil
}
