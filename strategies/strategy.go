package strategies

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rustyeddy/propguard/market"
)

// ErrNotEnoughCandles is returned when the window is too short for a detector.
var ErrNotEnoughCandles = errors.New("strategies: not enough candles")

// Detector derives a directional signal from a candle window and an optional
// sentiment score. Implementations hold configuration only, never state, so
// identical inputs always give identical output.
type Detector interface {
	Name() string
	// MinCandles is the shortest window Detect accepts.
	MinCandles() int
	Detect(candles []market.Candle, sentiment float64) (market.Signal, error)
}

// Config carries the parameters any registered detector may need.
type Config struct {
	Name         string  `json:"name" yaml:"name"`
	ZoneMargin   float64 `json:"liquidity_zone_margin" yaml:"liquidity_zone_margin"`
	VWAPLookback int     `json:"vwap_lookback" yaml:"vwap_lookback"`
	EMAPeriod    int     `json:"ema_period" yaml:"ema_period"`
}

// Enough reports whether candles is long enough for d.
func Enough(d Detector, candles []market.Candle) error {
	if need := d.MinCandles(); len(candles) < need {
		return fmt.Errorf("%w: %s needs %d, got %d", ErrNotEnoughCandles, d.Name(), need, len(candles))
	}
	return nil
}

// UsesSentiment reports whether the detector reads the sentiment argument.
func UsesSentiment(d Detector) bool {
	_, ok := d.(*EMASentiment)
	return ok
}

// ByName builds a detector from its registered name.
func ByName(cfg Config) (Detector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "noop", "none":
		return Noop{}, nil

	case "liquidity-sweep", "liquidity", "vwap":
		if cfg.ZoneMargin < 0 {
			return nil, fmt.Errorf("liquidity-sweep: zone margin must be >= 0, got %v", cfg.ZoneMargin)
		}
		return &LiquiditySweep{ZoneMargin: cfg.ZoneMargin, VWAPLookback: cfg.VWAPLookback}, nil

	case "ema-sentiment", "ema":
		if cfg.EMAPeriod <= 0 {
			return nil, fmt.Errorf("ema-sentiment: ema period must be > 0, got %d", cfg.EMAPeriod)
		}
		return &EMASentiment{Period: cfg.EMAPeriod}, nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: liquidity-sweep, ema-sentiment, noop)", cfg.Name)
	}
}
