package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lead_tracking"

// PrometheusRecorder exposes delivery and submission counters. A nil
// recorder is valid and records nothing.
type PrometheusRecorder struct {
	registry          *prom.Registry
	deliveries        *prom.CounterVec
	deliveryDuration  *prom.HistogramVec
	webhookSubmits    *prom.CounterVec
	leadJobsDropped   prom.Counter
	leadJobsProcessed prom.Counter
}

// NewPrometheusRecorder creates the metrics and registers them on reg
// (a fresh registry when reg is nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &PrometheusRecorder{
		registry: reg,
		deliveries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "platform_deliveries_total",
			Help:      "Analytics deliveries by platform, operation and result",
		}, []string{"platform", "operation", "result"}),
		deliveryDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "platform_delivery_duration_seconds",
			Help:      "Duration of a single platform delivery",
			Buckets:   prom.DefBuckets,
		}, []string{"platform", "operation"}),
		webhookSubmits: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_submissions_total",
			Help:      "Contact form submissions forwarded to the webhook by result",
		}, []string{"result"}),
		leadJobsDropped: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "lead_jobs_dropped_total",
			Help:      "Lead tracking jobs dropped because the queue was full",
		}),
		leadJobsProcessed: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "lead_jobs_processed_total",
			Help:      "Lead tracking jobs dispatched to the platforms",
		}),
	}
	reg.MustRegister(r.deliveries, r.deliveryDuration, r.webhookSubmits, r.leadJobsDropped, r.leadJobsProcessed)
	return r
}

// ObserveDelivery implements tracking.Recorder.
func (r *PrometheusRecorder) ObserveDelivery(platform, operation string, success bool, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.deliveries.WithLabelValues(platform, operation, resultLabel(success)).Inc()
	r.deliveryDuration.WithLabelValues(platform, operation).Observe(elapsed.Seconds())
}

func (r *PrometheusRecorder) IncWebhookSubmission(success bool) {
	if r == nil {
		return
	}
	r.webhookSubmits.WithLabelValues(resultLabel(success)).Inc()
}

func (r *PrometheusRecorder) IncLeadJobDropped() {
	if r == nil {
		return
	}
	r.leadJobsDropped.Inc()
}

func (r *PrometheusRecorder) IncLeadJobProcessed() {
	if r == nil {
		return
	}
	r.leadJobsProcessed.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
