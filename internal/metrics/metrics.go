package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymcore_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymcore_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymcore_reservations_total",
			Help: "Total number of reservations created",
		},
		[]string{"type"},
	)

	ReservationConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymcore_reservation_conflicts_total",
			Help: "Reservation attempts lost to a capacity race",
		},
		[]string{"type"},
	)

	ReservationCancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymcore_reservation_cancellations_total",
			Help: "Total number of reservation cancellations",
		},
		[]string{"actor"},
	)

	MembershipRenewalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymcore_membership_renewals_total",
			Help: "Total number of membership renewals",
		},
	)

	MembershipSuspensionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymcore_membership_suspensions_total",
			Help: "Total number of membership suspensions",
		},
	)

	MembershipCancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymcore_membership_cancellations_total",
			Help: "Total number of membership cancellations",
		},
		[]string{"refund_requested"},
	)

	RefundRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymcore_refund_requests_total",
			Help: "Refund requests emitted to the payment processor",
		},
		[]string{"status"},
	)

	CascadeFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymcore_cascade_failures_total",
			Help: "Future reservations that failed to cancel during a lifecycle cascade",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymcore_notifications_total",
			Help: "Total number of notifications processed",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymcore_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordReservation(rtype string) {
	ReservationsTotal.WithLabelValues(rtype).Inc()
}

func RecordReservationConflict(rtype string) {
	ReservationConflictsTotal.WithLabelValues(rtype).Inc()
}

func RecordReservationCancellation(actor string) {
	ReservationCancellationsTotal.WithLabelValues(actor).Inc()
}

func RecordRenewal() {
	MembershipRenewalsTotal.Inc()
}

func RecordSuspension() {
	MembershipSuspensionsTotal.Inc()
}

func RecordMembershipCancellation(refundRequested bool) {
	label := "false"
	if refundRequested {
		label = "true"
	}
	MembershipCancellationsTotal.WithLabelValues(label).Inc()
}

func RecordRefundRequest(status string) {
	RefundRequestsTotal.WithLabelValues(status).Inc()
}

func RecordCascadeFailure() {
	CascadeFailuresTotal.Inc()
}

func RecordNotification(ntype, status string) {
	NotificationsTotal.WithLabelValues(ntype, status).Inc()
}
