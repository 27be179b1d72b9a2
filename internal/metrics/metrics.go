// Package metrics exposes ambient Prometheus counters for throughput and
// a /metrics HTTP endpoint, per SPEC_FULL.md §6's ambient-interface
// addition. Not present in the teacher's own tree (fenrir ships no
// metrics) or the original source; grounded on
// github.com/prometheus/client_golang usage conventions from the rest of
// the retrieval pack, wired to implement engine.MetricsSink.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Registry implements engine.MetricsSink.
type Registry struct {
	ordersProcessed prometheus.Counter
	fillsEmitted    prometheus.Counter
	ordersRejected  prometheus.Counter
}

// NewRegistry constructs and registers the counters this package exposes.
func NewRegistry() *Registry {
	return &Registry{
		ordersProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_orders_processed_total",
			Help: "Total order requests accepted and processed by the engine.",
		}),
		fillsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_fills_emitted_total",
			Help: "Total fills produced across all books.",
		}),
		ordersRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchcore_orders_rejected_total",
			Help: "Total orders marked REJECTED (unfilled MARKET remainder).",
		}),
	}
}

func (r *Registry) OrdersProcessed() {
	r.ordersProcessed.Inc()
}

func (r *Registry) FillsEmitted(n int) {
	r.fillsEmitted.Add(float64(n))
}

func (r *Registry) OrderRejected() {
	r.ordersRejected.Inc()
}

// Serve runs a /metrics HTTP server on port until ctx is cancelled. Port
// is intentionally distinct from the three fixed trading ports
// (8001-8003); internal/supervisor passes its constant 9100.
func Serve(ctx context.Context, address string, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", address, port),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("metrics server shutting down")
		return server.Close()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("metrics: serve: %w", err)
		}
		return nil
	}
}
