package chord

import (
	"go.miragespace.co/chordring/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	stabilizeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "stabilize",
		Name:      "failures_total",
		Help:      "Number of failed RPCs to a successor during Stabilize",
	})

	successorReplacements = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "stabilize",
		Name:      "successor_replacements_total",
		Help:      "Number of times a successor was skipped over after failing",
	})

	fixFingerFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "fixfinger",
		Name:      "failures_total",
		Help:      "Number of finger entries that could not be refreshed",
	})

	predecessorEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "predecessor",
		Name:      "evictions_total",
		Help:      "Number of predecessors cleared after failing a ping",
	})

	lookupHops = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Subsystem: "lookup",
		Name:      "hops",
		Help:      "Number of hops taken by successful lookups",
		Buckets:   prometheus.LinearBuckets(0, 2, 16),
	})

	lookupFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "lookup",
		Name:      "failures_total",
		Help:      "Number of lookups that failed, by reason",
	}, []string{"reason"})
)

func init() {
	metrics.Registry.MustRegister(
		stabilizeFailures,
		successorReplacements,
		fixFingerFailures,
		predecessorEvictions,
		lookupHops,
		lookupFailures,
	)
}
