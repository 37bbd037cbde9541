package manager

import "github.com/prometheus/client_golang/prometheus"

// metrics captures the manager's ambient observability instruments:
// how many subscriptions and multicast patterns are open, and how
// often the missed-publication scheduler has to raise an alert.
type metrics struct {
	openSubscriptions       prometheus.Gauge
	multicastPatterns       prometheus.Gauge
	missedPublicationAlerts prometheus.Counter
	replyLatencySeconds     prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &metrics{
		openSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "joynr",
			Subsystem: "subscription",
			Name:      "open_subscriptions",
			Help:      "Number of subscriptions currently tracked by the manager.",
		}),
		multicastPatterns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "joynr",
			Subsystem: "subscription",
			Name:      "multicast_patterns",
			Help:      "Number of distinct multicast patterns with at least one subscriber.",
		}),
		missedPublicationAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "joynr",
			Subsystem: "subscription",
			Name:      "missed_publication_alerts_total",
			Help:      "Total number of missed-publication alerts raised by the scheduler.",
		}),
		replyLatencySeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "joynr",
			Subsystem: "subscription",
			Name:      "reply_latency_seconds",
			Help:      "Time between a subscription request and its reply.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.openSubscriptions, m.multicastPatterns, m.missedPublicationAlerts, m.replyLatencySeconds)
	return m
}
