/*
Package metrics exposes Prometheus collectors for payroll activity and
the HTTP API.

Collectors are registered on the Registerer passed to New, so tests can
use a fresh prometheus.NewRegistry(). A nil *Recorder is valid and records
nothing.

COLLECTORS:
  payroll_payments_total{status}                   processed / failed
  payroll_notifications_total{result}              sent / failed
  payroll_runs_total                               full payroll runs
  payroll_http_requests_total{method,route,status} API requests
  payroll_http_request_duration_seconds{method,route}
*/
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the payroll collectors.
type Recorder struct {
	payments      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	runs          prometheus.Counter
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_payments_total",
			Help: "Payments processed, by status.",
		}, []string{"status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_notifications_total",
			Help: "Payment notifications, by result.",
		}, []string{"result"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payroll_runs_total",
			Help: "Full payroll runs executed.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_http_requests_total",
			Help: "HTTP requests, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payroll_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	for _, c := range []prometheus.Collector{r.payments, r.notifications, r.runs, r.httpRequests, r.httpDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Payment records a processed (ok) or failed payment.
func (r *Recorder) Payment(ok bool) {
	if r == nil {
		return
	}
	r.payments.WithLabelValues(outcome(ok, "processed", "failed")).Inc()
}

// Notification records whether a payment notification was delivered.
func (r *Recorder) Notification(sent bool) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(outcome(sent, "sent", "failed")).Inc()
}

// Run records a full payroll run.
func (r *Recorder) Run() {
	if r == nil {
		return
	}
	r.runs.Inc()
}

// HTTPRequest records one API request.
func (r *Recorder) HTTPRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
