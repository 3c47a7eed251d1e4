package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
// HTTP и БД метрики собираются middleware и dbmetrics,
// доменные счетчики инкрементируются сервисами и use case-ами
type Metrics struct {
	serviceName string

	// HTTP метрики
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Метрики БД
	DBQueryDuration    *prometheus.HistogramVec
	DBConnectionsOpen  *prometheus.GaugeVec
	DBConnectionsIdle  *prometheus.GaugeVec
	DBConnectionsInUse *prometheus.GaugeVec

	// Доменные метрики
	SeatsConfirmedTotal       *prometheus.CounterVec
	StudentsWaitlistedTotal   *prometheus.CounterVec
	PromotionsTotal           *prometheus.CounterVec
	WaitlistExpiredTotal      *prometheus.CounterVec
	RateLimitRejectionsTotal  *prometheus.CounterVec
	NotificationFailuresTotal *prometheus.CounterVec
}

// New создает и регистрирует метрики сервиса
func New(serviceName string) *Metrics {
	return &Metrics{
		serviceName: serviceName,

		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "operation"}),

		DBConnectionsOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open database connections",
		}, []string{"service"}),

		DBConnectionsIdle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		}, []string{"service"}),

		DBConnectionsInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Number of database connections currently in use",
		}, []string{"service"}),

		SeatsConfirmedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_seats_confirmed_total",
			Help: "Total number of bookings confirmed directly (free seat on request)",
		}, []string{"service"}),

		StudentsWaitlistedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_students_waitlisted_total",
			Help: "Total number of students placed on a waitlist",
		}, []string{"service"}),

		PromotionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_promotions_total",
			Help: "Total number of waitlist entries promoted to bookings",
		}, []string{"service"}),

		WaitlistExpiredTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_waitlist_expired_total",
			Help: "Total number of waitlist entries removed by the expiry sweeper",
		}, []string{"service"}),

		RateLimitRejectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_ratelimit_rejections_total",
			Help: "Total number of OTP requests rejected by the rate limiter",
		}, []string{"service"}),

		NotificationFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_notification_failures_total",
			Help: "Total number of failed notification dispatches",
		}, []string{"service"}),
	}
}

// ServiceName возвращает имя сервиса, с которым зарегистрированы метрики
func (m *Metrics) ServiceName() string {
	return m.serviceName
}

// IncSeatConfirmed инкрементирует счетчик прямых подтверждений
func (m *Metrics) IncSeatConfirmed() {
	m.SeatsConfirmedTotal.WithLabelValues(m.serviceName).Inc()
}

// IncStudentWaitlisted инкрементирует счетчик постановок в очередь
func (m *Metrics) IncStudentWaitlisted() {
	m.StudentsWaitlistedTotal.WithLabelValues(m.serviceName).Inc()
}

// IncPromotion инкрементирует счетчик промоушенов
func (m *Metrics) IncPromotion() {
	m.PromotionsTotal.WithLabelValues(m.serviceName).Inc()
}

// AddWaitlistExpired добавляет количество удаленных sweeper-ом записей
func (m *Metrics) AddWaitlistExpired(n int) {
	m.WaitlistExpiredTotal.WithLabelValues(m.serviceName).Add(float64(n))
}

// IncRateLimitRejection инкрементирует счетчик отклоненных OTP запросов
func (m *Metrics) IncRateLimitRejection() {
	m.RateLimitRejectionsTotal.WithLabelValues(m.serviceName).Inc()
}

// IncNotificationFailure инкрементирует счетчик неудачных отправок уведомлений
func (m *Metrics) IncNotificationFailure() {
	m.NotificationFailuresTotal.WithLabelValues(m.serviceName).Inc()
}
