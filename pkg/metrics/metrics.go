package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus-метрик сервиса.
// Создается один раз при старте и передается в middleware и обертку БД.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec
	DBConnsOpen     *prometheus.GaugeVec
	DBConnsInUse    *prometheus.GaugeVec
	DBConnsIdle     *prometheus.GaugeVec

	// Бизнес-метрики бронирований
	ReservationsCreatedTotal   *prometheus.CounterVec
	ReservationConflictsTotal  *prometheus.CounterVec
	ReservationsCancelledTotal *prometheus.CounterVec
	ReservationsExpiredTotal   *prometheus.CounterVec
}

// New создает и регистрирует метрики в default registry
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		DBConnsOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections_open",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}, []string{}),

		DBConnsInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections_in_use",
			Help:        "Number of database connections currently in use",
			ConstLabels: constLabels,
		}, []string{}),

		DBConnsIdle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections_idle",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}, []string{}),

		ReservationsCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservations_created_total",
			Help:        "Total number of successfully created reservations",
			ConstLabels: constLabels,
		}, []string{"charging_mode"}),

		ReservationConflictsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservation_conflicts_total",
			Help:        "Total number of booking attempts rejected with a conflict",
			ConstLabels: constLabels,
		}, []string{}),

		ReservationsCancelledTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservations_cancelled_total",
			Help:        "Total number of cancelled reservations",
			ConstLabels: constLabels,
		}, []string{"by"}),

		ReservationsExpiredTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservations_expired_total",
			Help:        "Total number of reservations expired by the sweeper",
			ConstLabels: constLabels,
		}, []string{}),
	}
}

// ObserveDBQuery записывает длительность и результат запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueriesTotal.WithLabelValues(operation, status).Inc()
	m.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveHTTPRequest записывает метрики обработанного HTTP-запроса
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, start time.Time) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, httpStatusLabel(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
}

// IncReservationCreated учитывает успешно созданную бронь
func (m *Metrics) IncReservationCreated(chargingMode string) {
	m.ReservationsCreatedTotal.WithLabelValues(chargingMode).Inc()
}

// IncReservationConflict учитывает попытку брони, отклоненную конфликтом
func (m *Metrics) IncReservationConflict() {
	m.ReservationConflictsTotal.WithLabelValues().Inc()
}

// IncReservationCancelled учитывает отмену брони (by: user | operator)
func (m *Metrics) IncReservationCancelled(by string) {
	m.ReservationsCancelledTotal.WithLabelValues(by).Inc()
}

// AddReservationsExpired учитывает брони, истекшие за один проход фоновой джобы
func (m *Metrics) AddReservationsExpired(count int64) {
	m.ReservationsExpiredTotal.WithLabelValues().Add(float64(count))
}

// httpStatusLabel группирует статус-коды по классам (2xx, 4xx, ...)
func httpStatusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
