package eventstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instrumentation: package-level collectors registered once in
// init() and a small Timer helper for histogram observations.
var (
	appendsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventstore_client",
		Name:      "appends_total",
		Help:      "Total number of append calls, partitioned by outcome.",
	}, []string{"outcome"})

	appendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventstore_client",
		Name:      "append_duration_seconds",
		Help:      "Append call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	batchAppendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eventstore_client",
		Name:      "batch_append_duration_seconds",
		Help:      "Per-submission batch append latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	subscriptionReconnectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventstore_client",
		Name:      "subscription_reconnects_total",
		Help:      "Total catch-up subscription reconnect attempts.",
	}, []string{"subscription"})

	persistentAcksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventstore_client",
		Name:      "persistent_subscription_acks_total",
		Help:      "Total ack/nack calls sent on a persistent subscription session.",
	}, []string{"action"})
)

func init() {
	prometheus.MustRegister(
		appendsTotal,
		appendDuration,
		batchAppendDuration,
		subscriptionReconnectsTotal,
		persistentAcksTotal,
	)
}

// Timer observes the wall-clock duration of an operation into a
// HistogramVec keyed by an outcome label resolved when the timer stops.
type Timer struct {
	start time.Time
	vec   *prometheus.HistogramVec
}

func newTimer(vec *prometheus.HistogramVec) *Timer {
	return &Timer{start: time.Now(), vec: vec}
}

func (t *Timer) ObserveOutcome(label string) {
	t.vec.WithLabelValues(label).Observe(time.Since(t.start).Seconds())
}
