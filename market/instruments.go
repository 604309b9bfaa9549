package market

import "github.com/shopspring/decimal"

// InstrumentMeta carries the broker-facing precision of a symbol.
type InstrumentMeta struct {
	Name string
	// DisplayPrecision is the number of decimals a price may carry.
	DisplayPrecision int
	// TradeUnitsPrecision is the number of decimals units may carry.
	TradeUnitsPrecision int
	MinimumTradeSize    float64
}

var Instruments = map[string]InstrumentMeta{
	"NAS100_USD": {
		Name:                "NAS100_USD",
		DisplayPrecision:    1,
		TradeUnitsPrecision: 1,
		MinimumTradeSize:    0.1,
	},
	"SPX500_USD": {
		Name:                "SPX500_USD",
		DisplayPrecision:    1,
		TradeUnitsPrecision: 1,
		MinimumTradeSize:    0.1,
	},
	"US30_USD": {
		Name:                "US30_USD",
		DisplayPrecision:    1,
		TradeUnitsPrecision: 1,
		MinimumTradeSize:    0.1,
	},
	"EUR_USD": {
		Name:                "EUR_USD",
		DisplayPrecision:    5,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
	},
	"USD_JPY": {
		Name:                "USD_JPY",
		DisplayPrecision:    3,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
	},
}

// Instrument looks up symbol, falling back to five decimal prices and
// whole units for anything not in the table.
func Instrument(symbol string) InstrumentMeta {
	if m, ok := Instruments[symbol]; ok {
		return m
	}
	return InstrumentMeta{Name: symbol, DisplayPrecision: 5, MinimumTradeSize: 1}
}

// Units truncates size toward zero to the tradable precision.
func (m InstrumentMeta) Units(size float64) decimal.Decimal {
	return decimal.NewFromFloat(size).Truncate(int32(m.TradeUnitsPrecision))
}

// Tradable reports whether units meets the minimum trade size.
func (m InstrumentMeta) Tradable(units decimal.Decimal) bool {
	return units.GreaterThanOrEqual(decimal.NewFromFloat(m.MinimumTradeSize))
}
