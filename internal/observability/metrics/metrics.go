package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "finsight_"

	resultSuccess = "success"
)

var (
	registerOnce sync.Once

	uploadTotal   *prometheus.CounterVec
	uploadLatency *prometheus.HistogramVec

	aiRequestTotal   *prometheus.CounterVec
	aiRequestLatency *prometheus.HistogramVec

	sessionResets *prometheus.CounterVec
)

// Init registers the metrics with the default registry. Observations made
// before Init are dropped.
func Init() {
	registerOnce.Do(func() {
		uploadTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_upload_total",
				Help: "Total statement uploads by result",
			},
			[]string{"result"},
		)
		uploadLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "statement_upload_latency_seconds",
				Help:    "Statement processing latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		aiRequestTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ai_request_total",
				Help: "Total AI requests by operation and result",
			},
			[]string{"op", "result"},
		)
		aiRequestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ai_request_latency_seconds",
				Help:    "AI request latency in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"op"},
		)
		sessionResets = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "chat_session_reset_total",
				Help: "Total chat session resets by reason",
			},
			[]string{"reason"},
		)

		prometheus.MustRegister(
			uploadTotal,
			uploadLatency,
			aiRequestTotal,
			aiRequestLatency,
			sessionResets,
		)
	})
}

// ObserveUpload records statement processing duration and result.
func ObserveUpload(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if uploadTotal != nil {
		uploadTotal.WithLabelValues(result).Inc()
	}
	if uploadLatency != nil {
		uploadLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveAIRequest records an AI call. op is "commentary" or "chat".
func ObserveAIRequest(op, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if aiRequestTotal != nil {
		aiRequestTotal.WithLabelValues(op, result).Inc()
	}
	if aiRequestLatency != nil {
		aiRequestLatency.WithLabelValues(op).Observe(duration.Seconds())
	}
}

// IncSessionReset counts a discarded chat session.
func IncSessionReset(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if sessionResets != nil {
		sessionResets.WithLabelValues(reason).Inc()
	}
}
