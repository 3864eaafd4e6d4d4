// Package metrics exposes Prometheus instrumentation for the alert pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricPrefix = "alertdeck_"

var (
	// EventsReceived counts decoded push events per topic and event type.
	EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "events_received_total",
		Help: "Push events received, by topic and event type",
	}, []string{"topic", "event"})

	// EventsDropped counts unrecognized or malformed push events per topic.
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "events_dropped_total",
		Help: "Push events dropped as unrecognized or malformed, by topic",
	}, []string{"topic"})

	// Reconnects counts websocket reconnection attempts per topic.
	Reconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "stream_reconnects_total",
		Help: "Websocket reconnection attempts, by topic",
	}, []string{"topic"})

	// DeviceConnected is the coarse liveness flag derived from the
	// designated topic (1 connected, 0 not).
	DeviceConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: metricPrefix + "device_connected",
		Help: "Coarse device liveness derived from the designated topic",
	})

	// PollFailures counts failed snapshot fetches.
	PollFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "poll_failures_total",
		Help: "Failed alert snapshot fetches",
	})

	// ReconcilePasses counts reconciliation passes.
	ReconcilePasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "reconcile_passes_total",
		Help: "Reconciliation passes over push and snapshot inputs",
	})

	// CanonicalSize is the size of the current canonical alert set.
	CanonicalSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: metricPrefix + "canonical_alerts",
		Help: "Distinct identities in the current canonical alert set",
	})

	// NotificationsSent counts Slack notifications, by outcome.
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "notifications_total",
		Help: "Slack notifications attempted, by outcome",
	}, []string{"outcome"})
)
