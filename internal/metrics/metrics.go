// Package metrics defines the Prometheus collectors exported on /metrics.
// Collectors register with the default registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dorm"

// BookingsCreatedTotal counts committed bookings.
// Label:
//   - resource: "laundry" or "restroom"
var BookingsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created, by resource.",
	},
	[]string{"resource"},
)

// BookingsCancelledTotal counts committed cancellations.
var BookingsCancelledTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_cancelled_total",
		Help:      "Total number of bookings cancelled, by resource.",
	},
	[]string{"resource"},
)

// BookingRejectionsTotal counts refused booking attempts.
// Labels:
//   - resource: "laundry" or "restroom"
//   - reason: "validation", "conflict", "policy", "not_found" or "persistence"
var BookingRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_rejections_total",
		Help:      "Total number of booking attempts rejected, by resource and reason.",
	},
	[]string{"resource", "reason"},
)

// RemindersSentTotal counts reminder events handed to the broker.
var RemindersSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_sent_total",
		Help:      "Total number of booking reminders published, by resource.",
	},
	[]string{"resource"},
)

// EventPublishFailuresTotal counts booking events that could not be published.
var EventPublishFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_publish_failures_total",
		Help:      "Total number of booking events that failed to reach the broker.",
	},
)
