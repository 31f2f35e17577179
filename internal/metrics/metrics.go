package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry holds every bookrec collector; it is pushed rather than scraped.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	SourceRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "bookrec_source_requests_total",
		Help: "Total number of requests to the recommendation service",
	}, []string{"endpoint", "outcome"})

	SourceRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookrec_source_request_duration_seconds",
		Help:    "Duration of requests to the recommendation service in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	StaleResponsesTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "bookrec_view_stale_responses_total",
		Help: "Fetch outcomes discarded because a newer fetch was issued",
	})

	BreakerState = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bookrec_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"name"})
)

// Push sends the registry to a Prometheus pushgateway.
func Push(url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(Registry).Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
