package middleware

import (
	"context"
	"msgrpc/message"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the server-side request metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics creates the metric vectors. Call Register to attach them to a
// prometheus registry (tests use their own registry to avoid duplicate
// collector panics).
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "msgrpc",
				Subsystem: "server",
				Name:      "requests_total",
				Help:      "Total number of RPC requests handled",
			},
			[]string{"method"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "msgrpc",
				Subsystem: "server",
				Name:      "request_duration_seconds",
				Help:      "RPC request handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "msgrpc",
				Subsystem: "server",
				Name:      "errors_total",
				Help:      "Total number of RPC requests that returned an error",
			},
			[]string{"method"},
		),
	}
}

// Register registers all metric vectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.RequestsTotal, m.RequestDuration, m.ErrorsTotal} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// MetricsMiddleware records request count, duration, and errors per method.
func MetricsMiddleware(m *Metrics) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.Envelope) *message.Envelope {
			start := time.Now()
			resp := next(ctx, req)

			method := req.ServiceMethod
			m.RequestsTotal.WithLabelValues(method).Inc()
			m.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
			if resp.Error != "" {
				m.ErrorsTotal.WithLabelValues(method).Inc()
			}
			return resp
		}
	}
}
