package service

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/windoze95/saltybytes-recipefeed/internal/executor"
	"github.com/windoze95/saltybytes-recipefeed/internal/recipeapi"
)

// Request outcomes, used as the "outcome" metric label.
const (
	outcomeCompleted        = "completed"
	outcomeAPIFailure       = "api_failure"
	outcomeTransportFailure = "transport_failure"
	outcomeTimedOut         = "timed_out"
	outcomeCanceled         = "canceled"
	outcomeSuperseded       = "superseded"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipefeed_requests_total",
			Help: "Total number of recipe API requests by slot and outcome.",
		},
		[]string{"slot", "outcome"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipefeed_request_duration_seconds",
			Help:    "Recipe API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"slot"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
}

// observe records a finished request.
func observe(slot, outcome string, start time.Time) {
	requestsTotal.WithLabelValues(slot, outcome).Inc()
	requestDuration.WithLabelValues(slot).Observe(time.Since(start).Seconds())
}

// classifyFailure maps a request error to its outcome label.
func classifyFailure(err error) string {
	var apiErr *recipeapi.APIError
	switch {
	case errors.Is(err, executor.ErrTimedOut):
		return outcomeTimedOut
	case errors.As(err, &apiErr):
		return outcomeAPIFailure
	default:
		return outcomeTransportFailure
	}
}
