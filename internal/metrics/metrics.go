package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code", "service"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "service"},
	)

	// Workflow metrics
	RecordsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techwatch_records_processed_total",
			Help: "Total number of records run through the enrichment workflow",
		},
	)

	GenerationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techwatch_generation_failures_total",
			Help: "Total number of failed generative-text calls",
		},
	)

	NameExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techwatch_name_extractions_total",
			Help: "Name extraction outcomes per record",
		},
		[]string{"outcome"},
	)

	PatchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techwatch_patch_failures_total",
			Help: "Total number of failed competitor-name write-backs",
		},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techwatch_emails_sent_total",
			Help: "Total number of report emails by delivery status",
		},
		[]string{"status"},
	)

	// Application health metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "application_info",
			Help: "Application information",
		},
		[]string{"service", "version", "environment"},
	)
)

// Init sets metrics with default values
func Init(serviceName, version, environment string) {
	ApplicationInfo.WithLabelValues(serviceName, version, environment).Set(1)
}
