package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_search_requests_total",
			Help: "Total number of sub-search calls issued against the platform API",
		},
		[]string{"scope", "outcome"}, // scope: subreddit|site, outcome: ok|error
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scout_search_duration_seconds",
			Help:    "Duration of individual sub-search calls in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15},
		},
		[]string{"scope"},
	)

	LeadsRetainedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scout_leads_retained_total",
			Help: "Unique posts retained after quality filtering and deduplication",
		},
	)

	LeadsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_leads_rejected_total",
			Help: "Posts rejected by the quality filter, by reason",
		},
		[]string{"reason"},
	)
)

// RecordSearch updates the search call metrics for one sub-search.
func RecordSearch(scope string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	SearchRequestsTotal.WithLabelValues(scope, outcome).Inc()
	SearchDuration.WithLabelValues(scope).Observe(duration.Seconds())
}

// RecordRejection counts a quality-filter rejection.
func RecordRejection(reason string) {
	LeadsRejectedTotal.WithLabelValues(reason).Inc()
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
