package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	requeuedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "training_dashboard",
		Subsystem: "dlq",
		Name:      "events_requeued_total",
		Help:      "Number of DLQ entries successfully requeued into the outbox, labeled by topic.",
	}, []string{"topic"})

	quarantinedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "training_dashboard",
		Subsystem: "dlq",
		Name:      "events_quarantined_total",
		Help:      "Number of DLQ entries quarantined after exhausting retries, labeled by topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(requeuedCounter, quarantinedCounter)
}
