package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/availability", "200", 0.5)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/availability", "200"))
	assert.Equal(t, float64(1), count)
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/reservations", "201", 0.1)
	RecordHTTPRequest("POST", "/reservations", "201", 0.2)
	RecordHTTPRequest("POST", "/reservations", "409", 0.05)

	successCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/reservations", "201"))
	conflictCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/reservations", "409"))

	assert.Equal(t, float64(2), successCount)
	assert.Equal(t, float64(1), conflictCount)
}

func TestRecordReservation(t *testing.T) {
	ReservationsTotal.Reset()
	ReservationConflictsTotal.Reset()

	RecordReservation("group_class")
	RecordReservation("group_class")
	RecordReservation("personal_training")
	RecordReservationConflict("group_class")

	groupCount := testutil.ToFloat64(ReservationsTotal.WithLabelValues("group_class"))
	ptCount := testutil.ToFloat64(ReservationsTotal.WithLabelValues("personal_training"))
	conflicts := testutil.ToFloat64(ReservationConflictsTotal.WithLabelValues("group_class"))

	assert.Equal(t, float64(2), groupCount)
	assert.Equal(t, float64(1), ptCount)
	assert.Equal(t, float64(1), conflicts)
}

func TestRecordReservationCancellation(t *testing.T) {
	ReservationCancellationsTotal.Reset()

	RecordReservationCancellation("member")
	RecordReservationCancellation("member")
	RecordReservationCancellation("operator")

	memberCount := testutil.ToFloat64(ReservationCancellationsTotal.WithLabelValues("member"))
	operatorCount := testutil.ToFloat64(ReservationCancellationsTotal.WithLabelValues("operator"))

	assert.Equal(t, float64(2), memberCount)
	assert.Equal(t, float64(1), operatorCount)
}

func TestRecordRenewal(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gymcore_membership_renewals_total_test",
			Help: "Total number of membership renewals",
		},
	)

	oldCounter := MembershipRenewalsTotal
	MembershipRenewalsTotal = testCounter
	defer func() { MembershipRenewalsTotal = oldCounter }()

	RecordRenewal()
	RecordRenewal()

	count := testutil.ToFloat64(testCounter)
	assert.Equal(t, float64(2), count)
}

func TestRecordMembershipCancellation(t *testing.T) {
	MembershipCancellationsTotal.Reset()

	RecordMembershipCancellation(true)
	RecordMembershipCancellation(false)
	RecordMembershipCancellation(false)

	withRefund := testutil.ToFloat64(MembershipCancellationsTotal.WithLabelValues("true"))
	withoutRefund := testutil.ToFloat64(MembershipCancellationsTotal.WithLabelValues("false"))

	assert.Equal(t, float64(1), withRefund)
	assert.Equal(t, float64(2), withoutRefund)
}

func TestRecordRefundRequest(t *testing.T) {
	RefundRequestsTotal.Reset()

	RecordRefundRequest("success")
	RecordRefundRequest("failed")
	RecordRefundRequest("success")

	successCount := testutil.ToFloat64(RefundRequestsTotal.WithLabelValues("success"))
	failedCount := testutil.ToFloat64(RefundRequestsTotal.WithLabelValues("failed"))

	assert.Equal(t, float64(2), successCount)
	assert.Equal(t, float64(1), failedCount)
}

func TestRecordCascadeFailure(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gymcore_cascade_failures_total_test",
			Help: "Future reservations that failed to cancel during a lifecycle cascade",
		},
	)

	oldCounter := CascadeFailuresTotal
	CascadeFailuresTotal = testCounter
	defer func() { CascadeFailuresTotal = oldCounter }()

	RecordCascadeFailure()

	count := testutil.ToFloat64(testCounter)
	assert.Equal(t, float64(1), count)
}

func TestRecordNotification(t *testing.T) {
	NotificationsTotal.Reset()

	RecordNotification("reservation_confirmed", "queued")
	RecordNotification("reservation_confirmed", "delivered")
	RecordNotification("membership_renewed", "queued")

	queued := testutil.ToFloat64(NotificationsTotal.WithLabelValues("reservation_confirmed", "queued"))
	delivered := testutil.ToFloat64(NotificationsTotal.WithLabelValues("reservation_confirmed", "delivered"))

	assert.Equal(t, float64(1), queued)
	assert.Equal(t, float64(1), delivered)
}

func TestNotificationQueueLength(t *testing.T) {
	NotificationQueueLength.Set(10)
	assert.Equal(t, float64(10), testutil.ToFloat64(NotificationQueueLength))

	NotificationQueueLength.Set(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(NotificationQueueLength))
}

func TestMetricsIntegration(t *testing.T) {
	HTTPRequestsTotal.Reset()
	ReservationsTotal.Reset()
	NotificationsTotal.Reset()

	RecordHTTPRequest("POST", "/reservations", "201", 0.25)
	RecordReservation("specialized_space")
	RecordNotification("reservation_confirmed", "queued")

	httpCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/reservations", "201"))
	reservationCount := testutil.ToFloat64(ReservationsTotal.WithLabelValues("specialized_space"))
	notificationCount := testutil.ToFloat64(NotificationsTotal.WithLabelValues("reservation_confirmed", "queued"))

	assert.Equal(t, float64(1), httpCount)
	assert.Equal(t, float64(1), reservationCount)
	assert.Equal(t, float64(1), notificationCount)
}
