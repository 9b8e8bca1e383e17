// internal/app/system/metrics/metrics.go
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "clubhub"

// Outcome labels shared by the submission and login counters.
const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeBadPassword = "bad_password"
	OutcomeInvalid     = "invalid"
	OutcomeTooLong     = "too_long"
	OutcomeConflict    = "conflict"
	OutcomeDBError     = "db_error"
)

// DirectoryCounts feeds the clubs gauge at scrape time.
type DirectoryCounts func(ctx context.Context) map[string]int64

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	reg *prometheus.Registry

	submissions *prometheus.CounterVec
	logins      *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
	schemaSteps *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "President submissions by outcome.",
		}, []string{"outcome"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_logins_total",
			Help:      "Admin login attempts by outcome.",
		}, []string{"outcome"}),
		rateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests refused by the failure limiter, by bucket.",
		}, []string{"bucket"}),
		schemaSteps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_steps_total",
			Help:      "Schema migrations by result (applied, skipped, deferred, failed).",
		}, []string{"version", "result"}),
	}
}

// Nil receivers are no-ops so handlers work without metrics.

func (m *Metrics) Submission(outcome string) {
	if m != nil {
		m.submissions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Login(outcome string) {
	if m != nil {
		m.logins.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) RateLimited(bucket string) {
	if m != nil {
		m.rateLimited.WithLabelValues(bucket).Inc()
	}
}

// SchemaStep matches schema.StepObserver.
func (m *Metrics) SchemaStep(version, name, result string) {
	if m != nil {
		m.schemaSteps.WithLabelValues(version, result).Inc()
	}
}

// WatchDirectory registers a gauge of clubs per status, read through counts
// on every scrape.
func (m *Metrics) WatchDirectory(counts DirectoryCounts, timeout time.Duration) {
	m.reg.MustRegister(&directoryCollector{
		counts:  counts,
		timeout: timeout,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "clubs"),
			"Clubs in the directory by status.",
			[]string{"status"}, nil,
		),
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

type directoryCollector struct {
	counts  DirectoryCounts
	timeout time.Duration
	desc    *prometheus.Desc
}

func (c *directoryCollector) Describe(ch chan<- *prometheus.Desc) { ch <- c.desc }

func (c *directoryCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	for status, n := range c.counts(ctx) {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), status)
	}
}
