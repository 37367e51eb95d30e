// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scan metrics
	ScansTotal     *prometheus.CounterVec
	ScanDuration   prometheus.Histogram
	DecodeFailures prometheus.Counter
	PoolsTracked   prometheus.Gauge
	TokensTracked  prometheus.Gauge

	// Signal metrics
	SignalsComputed *prometheus.CounterVec
	ActiveSignals   prometheus.Gauge

	// Volume metrics
	VolumeSamples      prometheus.Counter
	SignificantVolume  prometheus.Counter
	BuyVolumeObserved  prometheus.Counter
	SellVolumeObserved prometheus.Counter

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulScan prometheus.Gauge
	UptimeSeconds      prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pump_swap_screen"
	}

	return &Metrics{
		// Scan metrics
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Total number of pool scans by status",
		}, []string{"status"}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Full scan duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		DecodeFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "decode_failures_total",
			Help:      "Total number of pool accounts that failed to decode",
		}),
		PoolsTracked: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "pools_tracked",
			Help:      "Current number of tracked pools",
		}),
		TokensTracked: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "tokens_tracked",
			Help:      "Current number of tracked token mints",
		}),

		// Signal metrics
		SignalsComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signal",
			Name:      "computed_total",
			Help:      "Total number of signals computed by class",
		}, []string{"class"}),
		ActiveSignals: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "signal",
			Name:      "active",
			Help:      "Current number of non-stale signals",
		}),

		// Volume metrics
		VolumeSamples: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "volume",
			Name:      "samples_total",
			Help:      "Total number of volume samples taken",
		}),
		SignificantVolume: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "volume",
			Name:      "significant_events_total",
			Help:      "Total number of significant volume events",
		}),
		BuyVolumeObserved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "volume",
			Name:      "buy_sol_total",
			Help:      "Cumulative approximate buy volume observed, in SOL",
		}),
		SellVolumeObserved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "volume",
			Name:      "sell_sol_total",
			Help:      "Cumulative approximate sell volume observed, in SOL",
		}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulScan: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_scan_timestamp",
			Help:      "Unix timestamp of last successful scan",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScan records the outcome of a full pool scan.
func RecordScan(status string, durationSeconds float64) {
	DefaultMetrics.ScansTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ScanDuration.Observe(durationSeconds)
}

// RecordDecodeFailures adds to the decode failure counter.
func RecordDecodeFailures(n int) {
	if n > 0 {
		DefaultMetrics.DecodeFailures.Add(float64(n))
	}
}

// UpdateTrackedCounts updates the pool and token gauges.
func UpdateTrackedCounts(pools, tokens int) {
	DefaultMetrics.PoolsTracked.Set(float64(pools))
	DefaultMetrics.TokensTracked.Set(float64(tokens))
}

// RecordSignal records a computed signal by class.
func RecordSignal(class string) {
	DefaultMetrics.SignalsComputed.WithLabelValues(class).Inc()
}

// UpdateActiveSignals updates the active signal gauge.
func UpdateActiveSignals(n int) {
	DefaultMetrics.ActiveSignals.Set(float64(n))
}

// RecordVolumeSample records one volume sample and its observed volumes.
func RecordVolumeSample(buySOL, sellSOL float64, significant bool) {
	DefaultMetrics.VolumeSamples.Inc()
	DefaultMetrics.BuyVolumeObserved.Add(buySOL)
	DefaultMetrics.SellVolumeObserved.Add(sellSOL)
	if significant {
		DefaultMetrics.SignificantVolume.Inc()
	}
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordSuccessfulScan sets the last successful scan timestamp.
func RecordSuccessfulScan(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulScan.Set(float64(unixSeconds))
}
