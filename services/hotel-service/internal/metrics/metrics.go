package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "staybook"

var (
	// AvailabilityChecks counts checker runs by outcome (available, unavailable, error).
	AvailabilityChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "availability_checks_total",
		Help:      "Availability checks by outcome.",
	}, []string{"outcome"})

	BookingsReserved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_reserved_total",
		Help:      "Pending bookings created or updated with a payment intent.",
	})

	BookingsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_confirmed_total",
		Help:      "Bookings flipped to confirmed.",
	})

	// BookingConflicts counts rejected date ranges by stage (reserve, confirm).
	BookingConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_conflicts_total",
		Help:      "Bookings rejected because the dates were taken.",
	}, []string{"stage"})

	PaymentProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_provider_errors_total",
		Help:      "Failed payment provider calls by operation.",
	}, []string{"operation"})

	OutboxPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_published_total",
		Help:      "Outbox events written to Kafka.",
	})

	OutboxPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_publish_failures_total",
		Help:      "Outbox batches that failed to publish.",
	})
)
