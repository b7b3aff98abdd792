package metrics

import (
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "statements_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	statementGenerateTotal   *prometheus.CounterVec
	statementGenerateLatency *prometheus.HistogramVec
	statementExportTotal     *prometheus.CounterVec
	statementExportLatency   *prometheus.HistogramVec

	sourceDegradedTotal *prometheus.CounterVec
	assetFallbackTotal  *prometheus.CounterVec
	assetCacheTotal     *prometheus.CounterVec

	httpRequestsTotal *prometheus.CounterVec
)

// Init registers statement metrics and, when db is set, gauges over the
// documents table.
func Init(db *sql.DB, documentsTable string, logger *slog.Logger) {
	registerOnce.Do(func() {
		statementGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "generate_total",
				Help: "Total statement generate operations by result",
			},
			[]string{"result"},
		)
		statementGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "generate_latency_seconds",
				Help:    "Statement generate latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		statementExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total statement downloads by format and result",
			},
			[]string{"format", "result"},
		)
		statementExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Statement download latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		sourceDegradedTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "source_degraded_total",
				Help: "Optional source reads that failed and were replaced by empty data",
			},
			[]string{"source"},
		)
		assetFallbackTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "asset_fallback_total",
				Help: "Assets drawn as placeholders by asset name",
			},
			[]string{"asset"},
		)
		assetCacheTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "asset_cache_total",
				Help: "Asset cache lookups by outcome",
			},
			[]string{"outcome"},
		)

		httpRequestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by route and status class",
			},
			[]string{"route", "status"},
		)

		prometheus.MustRegister(
			statementGenerateTotal,
			statementGenerateLatency,
			statementExportTotal,
			statementExportLatency,
			sourceDegradedTotal,
			assetFallbackTotal,
			assetCacheTotal,
			httpRequestsTotal,
		)

		if db != nil {
			registerDBMetrics(db, documentsTable, logger)
		}
	})
}

// ObserveStatementGenerate records generate latency and result.
func ObserveStatementGenerate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if statementGenerateTotal != nil {
		statementGenerateTotal.WithLabelValues(result).Inc()
	}
	if statementGenerateLatency != nil {
		statementGenerateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveStatementExport records download latency and result per format.
func ObserveStatementExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if statementExportTotal != nil {
		statementExportTotal.WithLabelValues(format, result).Inc()
	}
	if statementExportLatency != nil {
		statementExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncSourceDegraded counts an optional source replaced by empty data.
func IncSourceDegraded(source string) {
	if source == "" {
		source = "unknown"
	}
	if sourceDegradedTotal != nil {
		sourceDegradedTotal.WithLabelValues(source).Inc()
	}
}

// IncAssetFallback counts an asset drawn as a placeholder.
func IncAssetFallback(asset string) {
	if asset == "" {
		asset = "unknown"
	}
	if assetFallbackTotal != nil {
		assetFallbackTotal.WithLabelValues(asset).Inc()
	}
}

// IncAssetCache counts an asset cache lookup outcome.
func IncAssetCache(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	if assetCacheTotal != nil {
		assetCacheTotal.WithLabelValues(outcome).Inc()
	}
}

// IncHTTPRequest counts a served request by route pattern and status class.
func IncHTTPRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequestsTotal != nil {
		httpRequestsTotal.WithLabelValues(route, statusClass(status)).Inc()
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)
