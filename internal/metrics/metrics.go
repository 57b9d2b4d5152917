package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ItemsTotal tracks finished items per task and status
	ItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlmbench_items_total",
			Help: "Total number of items finished",
		},
		[]string{"task", "status"},
	)

	// OracleCallsTotal tracks oracle calls per step and outcome
	OracleCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlmbench_oracle_calls_total",
			Help: "Total number of oracle calls",
		},
		[]string{"step", "outcome"},
	)

	// OracleLatency tracks oracle call latency
	OracleLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vlmbench_oracle_latency_seconds",
			Help:    "Oracle call latency in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160, 320},
		},
		[]string{"step"},
	)

	// LogAppendsTotal tracks records appended per channel
	LogAppendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlmbench_log_appends_total",
			Help: "Total number of records appended to channel logs",
		},
		[]string{"channel"},
	)

	// PendingItems tracks items not yet finished in the current run
	PendingItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vlmbench_pending_items",
			Help: "Items pending in the current run",
		},
	)

	// FallbackParsesTotal tracks category lists recovered by token scanning
	FallbackParsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vlmbench_fallback_parses_total",
			Help: "Total number of category lists recovered by token scanning",
		},
	)
)

// CallObserver records oracle calls.
type CallObserver struct{}

// ObserveCall implements oracle.CallObserver.
func (CallObserver) ObserveCall(step, outcome string, elapsed time.Duration) {
	OracleCallsTotal.WithLabelValues(step, outcome).Inc()
	OracleLatency.WithLabelValues(step).Observe(elapsed.Seconds())
}
