package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ImportRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventsync_import_runs_total",
		Help: "Total credential import passes",
	})
	ImportErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventsync_import_errors_total",
		Help: "Total errors logged during import passes",
	})
	EventsImported = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventsync_events_imported_total",
		Help: "Total events upserted from vendors",
	})
	RSVPsImported = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventsync_rsvps_imported_total",
		Help: "Total RSVPs persisted through the upsert chain",
	})
	ImportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "eventsync_import_duration_seconds",
		Help:    "Duration of one credential import pass",
		Buckets: prometheus.DefBuckets,
	})
	VendorAPICalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eventsync_vendor_api_calls_total",
		Help: "Total vendor API requests",
	}, []string{"vendor", "endpoint"})
	WebhookEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eventsync_webhook_events_total",
		Help: "Total webhook notifications received",
	}, []string{"vendor", "action"})
)

func init() {
	prometheus.MustRegister(ImportRuns, ImportErrors, EventsImported, RSVPsImported,
		ImportDuration, VendorAPICalls, WebhookEvents)
}

// ObserveImportDuration records the duration of a credential pass.
func ObserveImportDuration(start time.Time) {
	ImportDuration.Observe(time.Since(start).Seconds())
}

// IncVendorAPICall increments the request counter for a vendor endpoint.
func IncVendorAPICall(vendor, endpoint string) {
	VendorAPICalls.WithLabelValues(vendor, endpoint).Inc()
}
