package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the reminder scheduler.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	remindersFired  *prometheus.CounterVec
	reminderPasses  prometheus.Counter
	timersArmed     prometheus.Gauge
	extractionTotal *prometheus.CounterVec
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	remindersFired := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reminders_fired_total",
		Help: "Total reminder notifications emitted, by kind",
	}, []string{"kind"})

	reminderPasses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminder_passes_total",
		Help: "Total reminder evaluation passes",
	})

	timersArmed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reminder_timers_armed",
		Help: "Timers armed by the most recent reminder pass",
	})

	extractionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_extractions_total",
		Help: "Timetable extraction attempts, by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, remindersFired, reminderPasses, timersArmed, extractionTotal, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		remindersFired:  remindersFired,
		reminderPasses:  reminderPasses,
		timersArmed:     timersArmed,
		extractionTotal: extractionTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ReminderFired counts an emitted reminder ("class" or "exam_eve").
func (m *MetricsService) ReminderFired(kind string) {
	if m == nil {
		return
	}
	m.remindersFired.WithLabelValues(kind).Inc()
}

// ReminderPass records one completed evaluation pass and its armed timers.
func (m *MetricsService) ReminderPass(armed int) {
	if m == nil {
		return
	}
	m.reminderPasses.Inc()
	m.timersArmed.Set(float64(armed))
}

// ExtractionResult counts one extraction attempt.
func (m *MetricsService) ExtractionResult(ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.extractionTotal.WithLabelValues(outcome).Inc()
}
