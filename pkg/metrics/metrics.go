package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec

	BookingsCreated    *prometheus.CounterVec
	BookingConflicts   *prometheus.CounterVec
	BookingTransitions *prometheus.CounterVec
	OutboxPublished    *prometheus.CounterVec
	OutboxFailures     *prometheus.CounterVec
}

// New создает метрики и регистрирует их в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики и регистрирует их в указанном реестре
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),

		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}, []string{}),

		DBInUseConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{}),

		DBIdleConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}, []string{}),

		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{}),

		BookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Bookings created",
			ConstLabels: constLabels,
		}, []string{}),

		BookingConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_conflicts_total",
			Help:        "Booking attempts rejected because the slot was taken",
			ConstLabels: constLabels,
		}, []string{"reason"}),

		BookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_transitions_total",
			Help:        "Booking status transitions",
			ConstLabels: constLabels,
		}, []string{"from", "to"}),

		OutboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "outbox_events_published_total",
			Help:        "Outbox events published to the broker",
			ConstLabels: constLabels,
		}, []string{"event_type"}),

		OutboxFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "outbox_publish_failures_total",
			Help:        "Failed outbox publish batches",
			ConstLabels: constLabels,
		}, []string{}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.BookingsCreated,
		m.BookingConflicts,
		m.BookingTransitions,
		m.OutboxPublished,
		m.OutboxFailures,
	)

	return m
}

// IncConflict увеличивает счётчик конфликтов; безопасен для nil
func (m *Metrics) IncConflict(reason string) {
	if m == nil {
		return
	}
	m.BookingConflicts.WithLabelValues(reason).Inc()
}

// IncCreated увеличивает счётчик созданных бронирований; безопасен для nil
func (m *Metrics) IncCreated() {
	if m == nil {
		return
	}
	m.BookingsCreated.WithLabelValues().Inc()
}

// IncTransition увеличивает счётчик переходов статусов; безопасен для nil
func (m *Metrics) IncTransition(from, to string) {
	if m == nil {
		return
	}
	m.BookingTransitions.WithLabelValues(from, to).Inc()
}

// IncPublished увеличивает счётчик опубликованных событий outbox; безопасен для nil
func (m *Metrics) IncPublished(eventType string) {
	if m == nil {
		return
	}
	m.OutboxPublished.WithLabelValues(eventType).Inc()
}

// IncPublishFailure увеличивает счётчик ошибок публикации; безопасен для nil
func (m *Metrics) IncPublishFailure() {
	if m == nil {
		return
	}
	m.OutboxFailures.WithLabelValues().Inc()
}
