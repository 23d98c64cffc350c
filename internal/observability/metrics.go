// Package observability holds the Prometheus collectors of the export service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Export outcomes used as the "outcome" label.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid_request"
	OutcomeNoData   = "no_data"
	OutcomeNoMatch  = "no_match"
	OutcomeUpstream = "upstream_failure"
	OutcomeEncoding = "encoding_failure"
)

var (
	exportRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reportes",
		Subsystem: "export",
		Name:      "requests_total",
		Help:      "Spreadsheet export requests by outcome.",
	}, []string{"outcome"})
	exportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reportes",
		Subsystem: "export",
		Name:      "duration_seconds",
		Help:      "Time spent producing a spreadsheet export, fetch included.",
		Buckets:   prometheus.DefBuckets,
	})
	exportRows = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reportes",
		Subsystem: "export",
		Name:      "rows",
		Help:      "Data rows written per successful export.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})
	storeFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reportes",
		Subsystem: "store",
		Name:      "fetch_duration_seconds",
		Help:      "Latency of record store reads by query and result.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"query", "result"})
)

func init() {
	prometheus.MustRegister(exportRequests, exportDuration, exportRows, storeFetchDuration)
}

// RecordExport counts one export attempt. rows is only observed on success.
func RecordExport(outcome string, elapsed time.Duration, rows int) {
	exportRequests.WithLabelValues(outcome).Inc()
	exportDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		exportRows.Observe(float64(rows))
	}
}

// ObserveStoreFetch records the latency of a record store query.
func ObserveStoreFetch(query string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	storeFetchDuration.WithLabelValues(query, result).Observe(elapsed.Seconds())
}
