package market

import (
	"fmt"
	"strings"
)

// Signal is the directional output of a detector for one cycle.
type Signal int

const (
	None Signal = iota
	Long
	Short
)

// Buy and Sell name the same directions for detectors that speak in order sides.
const (
	Buy  = Long
	Sell = Short
)

func (s Signal) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "none"
	}
}

// Side returns the order side for the signal, "" for None.
func (s Signal) Side() string {
	switch s {
	case Long:
		return "buy"
	case Short:
		return "sell"
	default:
		return ""
	}
}

// Dir returns +1 for long, -1 for short and 0 otherwise.
func (s Signal) Dir() float64 {
	switch s {
	case Long:
		return 1
	case Short:
		return -1
	default:
		return 0
	}
}

// ParseSignal accepts long/short/buy/sell/none in any case.
func ParseSignal(s string) (Signal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy":
		return Long, nil
	case "short", "sell":
		return Short, nil
	case "", "none":
		return None, nil
	default:
		return None, fmt.Errorf("market: unknown signal %q", s)
	}
}
