// Package metrics defines the Prometheus collectors for the prediction service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled by the prediction service",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	httpRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_predictions_total",
			Help: "Total number of predictions per model and emitted label",
		},
		[]string{"model", "label"},
	)
	predictionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_prediction_errors_total",
			Help: "Total number of failed predictions per model",
		},
		[]string{"model"},
	)
	predictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "model_prediction_duration_seconds",
			Help:    "Time spent in a single model's predict call",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		},
		[]string{"model"},
	)
	modelLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "Whether a model artifact was loaded at startup (1) or not (0)",
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsInFlight)
	prometheus.MustRegister(predictionsTotal)
	prometheus.MustRegister(predictionErrorsTotal)
	prometheus.MustRegister(predictionDuration)
	prometheus.MustRegister(modelLoaded)
}

func RecordRequestStart() {
	httpRequestsInFlight.Inc()
}

func RecordRequestFinish(method, path string, status int, durationSeconds float64) {
	code := strconv.Itoa(status)
	httpRequestsInFlight.Dec()
	httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	httpRequestDuration.WithLabelValues(method, path, code).Observe(durationSeconds)
}

func RecordPrediction(model string, label int, durationSeconds float64) {
	predictionsTotal.WithLabelValues(model, strconv.Itoa(label)).Inc()
	predictionDuration.WithLabelValues(model).Observe(durationSeconds)
}

func RecordPredictionError(model string) {
	predictionErrorsTotal.WithLabelValues(model).Inc()
}

func SetModelLoaded(model string, loaded bool) {
	v := 0.0
	if loaded {
		v = 1
	}
	modelLoaded.WithLabelValues(model).Set(v)
}
