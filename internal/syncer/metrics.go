package syncer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "training_dashboard",
		Subsystem: "syncer",
		Name:      "sessions_recorded_total",
		Help:      "Number of Strava activities recorded as new sessions.",
	})

	replayedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "training_dashboard",
		Subsystem: "syncer",
		Name:      "sessions_replayed_total",
		Help:      "Number of Strava activities that matched an existing idempotency key.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "training_dashboard",
		Subsystem: "syncer",
		Name:      "sessions_failed_total",
		Help:      "Number of Strava activities that could not be recorded.",
	})

	lastSyncGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "training_dashboard",
		Subsystem: "syncer",
		Name:      "last_sync_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed sync run.",
	})
)

func init() {
	prometheus.MustRegister(recordedCounter, replayedCounter, failedCounter, lastSyncGauge)
}

func recordSyncRecorded() { recordedCounter.Inc() }
func recordSyncReplayed() { replayedCounter.Inc() }
func recordSyncFailed()   { failedCounter.Inc() }

func recordSyncCompleted(ts time.Time) {
	lastSyncGauge.Set(float64(ts.Unix()))
}
