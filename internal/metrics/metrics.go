package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gym_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_class_bookings_total",
			Help: "Class booking attempts by result",
		},
		[]string{"result"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_class_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_membership_validations_total",
			Help: "Membership validations by lookup type and result",
		},
		[]string{"type", "result"},
	)

	MembershipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_membership_changes_total",
			Help: "Membership lifecycle actions",
		},
		[]string{"action"},
	)

	SalesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_sales_total",
			Help: "Total number of retail sales",
		},
	)

	SaleItemsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_sale_items_total",
			Help: "Total number of product units sold",
		},
	)

	SaleRevenueCents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_sale_revenue_cents_total",
			Help: "Retail revenue in cents",
		},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_payments_total",
			Help: "Payments recorded by method and status",
		},
		[]string{"method", "status"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gym_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	ExpiryRemindersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_expiry_reminders_total",
			Help: "Membership expiry reminders queued",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(result string) {
	BookingsTotal.WithLabelValues(result).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordValidation(validationType string, success bool) {
	ValidationsTotal.WithLabelValues(validationType, strconv.FormatBool(success)).Inc()
}

func RecordMembership(action string) {
	MembershipsTotal.WithLabelValues(action).Inc()
}

func RecordSale(quantity int, totalCents int64) {
	SalesTotal.Inc()
	SaleItemsTotal.Add(float64(quantity))
	SaleRevenueCents.Add(float64(totalCents))
}

func RecordPayment(method, status string) {
	PaymentsTotal.WithLabelValues(method, status).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordExpiryReminders(n int) {
	ExpiryRemindersTotal.Add(float64(n))
}
