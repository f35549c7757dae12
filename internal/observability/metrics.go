// Package observability holds service-level Prometheus instruments.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "homechild_service",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent catalog activity persisted to Postgres.",
	})
	childActivityGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "homechild_service",
		Subsystem: "persistence",
		Name:      "last_child_activity_write_timestamp_seconds",
		Help:      "Unix timestamp of the most recent schedule write.",
	})
)

func init() {
	prometheus.MustRegister(activityPersistGauge, childActivityGauge)
}

// RecordActivityPersisted updates the catalog watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordChildActivityWrite updates the schedule watermark gauge.
func RecordChildActivityWrite(ts time.Time) {
	if ts.IsZero() {
		return
	}
	childActivityGauge.Set(float64(ts.Unix()))
}
