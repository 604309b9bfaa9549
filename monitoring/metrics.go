// Package monitoring exposes decision cycle metrics to Prometheus.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one process. Build it once and share it.
type Metrics struct {
	reg *prometheus.Registry

	cycles         *prometheus.CounterVec
	intents        *prometheus.CounterVec
	intentSize     *prometheus.HistogramVec
	equity         prometheus.Gauge
	peakEquity     prometheus.Gauge
	dailyPL        prometheus.Gauge
	tradingEnabled prometheus.Gauge
	errors         *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		reg: reg,
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propguard_cycles_total",
				Help: "Decision cycles by outcome",
			},
			[]string{"outcome"},
		),
		intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propguard_order_intents_total",
				Help: "Order intents emitted",
			},
			[]string{"symbol", "side"},
		),
		intentSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "propguard_order_intent_size",
				Help:    "Distribution of order intent sizes",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"symbol"},
		),
		equity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "propguard_equity",
			Help: "Account equity seen by the last cycle",
		}),
		peakEquity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "propguard_peak_equity",
			Help: "Highest equity observed",
		}),
		dailyPL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "propguard_daily_pl",
			Help: "Profit and loss since the last daily reset",
		}),
		tradingEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "propguard_trading_enabled",
			Help: "1 while the risk governor permits trading",
		}),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propguard_errors_total",
				Help: "Collaborator failures by kind",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.cycles, m.intents, m.intentSize, m.equity, m.peakEquity, m.dailyPL, m.tradingEnabled, m.errors)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// RecordCycle counts one finished cycle.
func (m *Metrics) RecordCycle(outcome string) {
	m.cycles.WithLabelValues(outcome).Inc()
}

// RecordIntent counts an order intent and observes its size.
func (m *Metrics) RecordIntent(symbol, side string, size float64) {
	m.intents.WithLabelValues(symbol, side).Inc()
	m.intentSize.WithLabelValues(symbol).Observe(size)
}

// UpdateRisk publishes the governor's view of the account.
func (m *Metrics) UpdateRisk(equity, peak, dailyPL float64, enabled bool) {
	m.equity.Set(equity)
	m.peakEquity.Set(peak)
	m.dailyPL.Set(dailyPL)
	if enabled {
		m.tradingEnabled.Set(1)
	} else {
		m.tradingEnabled.Set(0)
	}
}

// RecordError counts a collaborator failure.
func (m *Metrics) RecordError(kind string) {
	m.errors.WithLabelValues(kind).Inc()
}
