package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	sessionPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "training_dashboard",
		Subsystem: "persistence",
		Name:      "last_session_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent session persisted to Postgres.",
	})
	sessionSyncedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "training_dashboard",
		Subsystem: "persistence",
		Name:      "last_session_synced_timestamp_seconds",
		Help:      "Unix timestamp of the most recent session transitioned to synced.",
	})
)

func init() {
	prometheus.MustRegister(sessionPersistGauge, sessionSyncedGauge)
}

// RecordSessionPersisted updates the persistence watermark gauge.
func RecordSessionPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	sessionPersistGauge.Set(float64(ts.Unix()))
}

// RecordSessionSynced updates the synced watermark gauge.
func RecordSessionSynced(ts time.Time) {
	if ts.IsZero() {
		return
	}
	sessionSyncedGauge.Set(float64(ts.Unix()))
}
