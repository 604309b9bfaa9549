package market

import "time"

// OrderIntent is what the decision cycle hands back to its caller. It carries
// no broker specific fields; the executor maps it to a broker request.
type OrderIntent struct {
	ID         string
	Time       time.Time
	Symbol     string
	Signal     Signal
	Size       float64
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Reason     string
}

// Brackets returns directional stop and target prices at fixed offsets from entry.
// Long: stop below, target above. Short is inverted.
func Brackets(sig Signal, entry, stopDistance, targetDistance float64) (stop, target float64) {
	d := sig.Dir()
	return entry - d*stopDistance, entry + d*targetDistance
}
