// Package metricsrv exposes a run's live counters on a Prometheus
// /metrics endpoint (`flood run --metrics-addr ADDR`), for an operator
// scraping a long run externally. It is additive: the report a run
// produces never depends on this server being reachable.
package metricsrv

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flood/internal/model"
	"flood/internal/stats"
)

// Server wraps an *http.Server exposing /metrics for one run.
type Server struct {
	http *http.Server

	requests *prometheus.CounterVec
	p50      prometheus.Gauge
	p99      prometheus.Gauge
	rps      prometheus.Gauge
}

// New builds a Server bound to addr, registered against a private registry
// (never the global default, so multiple sequential runs in one process
// don't collide on re-registration).
func New(addr string) *Server {
	reg := prometheus.NewRegistry()

	s := &Server{
		requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "flood_requests_total",
			Help: "Total dispatched calls by outcome.",
		}, []string{"outcome"}),
		p50: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "flood_service_time_p50_microseconds",
			Help: "Current global p50 service time.",
		}),
		p99: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "flood_service_time_p99_microseconds",
			Help: "Current global p99 service time.",
		}),
		rps: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "flood_throughput_rps",
			Help: "Most recent finalized-bucket throughput.",
		}),
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.http = &http.Server{Addr: addr, Handler: router}
	return s
}

// Serve starts listening in the background. Errors other than a clean
// Shutdown are surfaced on the returned channel.
func (s *Server) Serve() <-chan error {
	errc := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()
	return errc
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// PollAndServe periodically converts the collector's cumulative per-outcome
// counts into deltas (Prometheus counters accumulate via Add, but the
// collector's snapshot is already cumulative) and pushes them plus a fresh
// live latency/throughput snapshot into the exported gauges.
func PollAndServe(ctx context.Context, s *Server, interval time.Duration, live func(now time.Time) stats.LiveSnapshot, counts func() map[model.Outcome]uint64) {
	last := make(map[model.Outcome]uint64)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			cur := counts()
			delta := make(map[model.Outcome]uint64, len(cur))
			for o, n := range cur {
				delta[o] = n - last[o]
				last[o] = n
			}
			s.observeDelta(delta, live(now))
		}
	}
}

func (s *Server) observeDelta(delta map[model.Outcome]uint64, snap stats.LiveSnapshot) {
	for outcome, n := range delta {
		if n == 0 {
			continue
		}
		s.requests.WithLabelValues(string(outcome)).Add(float64(n))
	}
	s.p50.Set(float64(snap.P50.Microseconds()))
	s.p99.Set(float64(snap.P99.Microseconds()))
	s.rps.Set(snap.ThroughputRps)
}
