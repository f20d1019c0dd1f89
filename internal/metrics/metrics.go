// Package metrics exposes Prometheus instrumentation for discovery,
// reflection, DAG storage, and the HTTP API
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one server instance in its own registry.
// A nil *Metrics records nothing
type Metrics struct {
	registry *prometheus.Registry

	Scans           *prometheus.CounterVec
	ScanDuration    prometheus.Histogram
	CatalogModules  prometheus.Gauge
	CatalogErrors   prometheus.Gauge
	CatalogOps      prometheus.Gauge
	Describes       *prometheus.CounterVec
	DescribeLatency *prometheus.HistogramVec
	DAGSaves        *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

const Namespace = "airdraw"

// Result labels
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, in a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "scans_total",
			Help:      "Total number of operator discovery scans",
		}, []string{"result"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "scan_duration_seconds",
			Help:      "Duration of operator discovery scans in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		CatalogModules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "catalog_modules",
			Help:      "Modules with operators in the current catalog",
		}),
		CatalogErrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "catalog_errors",
			Help:      "Discovery errors in the current catalog",
		}),
		CatalogOps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "catalog_operators",
			Help:      "Operator classes in the current catalog",
		}),
		Describes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "describes_total",
			Help:      "Total number of operator signature lookups",
		}, []string{"strategy", "result"}),
		DescribeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "describe_duration_seconds",
			Help:      "Duration of operator signature lookups in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		DAGSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dag_saves_total",
			Help:      "Total number of DAG save attempts",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		m.Scans, m.ScanDuration,
		m.CatalogModules, m.CatalogErrors, m.CatalogOps,
		m.Describes, m.DescribeLatency,
		m.DAGSaves,
		m.HTTPRequests, m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding every collector
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}

// RecordScan records a completed scan and, when it succeeded, the shape of
// the resulting catalog
func (m *Metrics) RecordScan(
	d time.Duration, err error, modules, operators, errs int,
) {
	if m == nil {
		return
	}
	m.ScanDuration.Observe(d.Seconds())
	if err != nil {
		m.Scans.WithLabelValues(ResultError).Inc()
		return
	}
	m.Scans.WithLabelValues(ResultOK).Inc()
	m.CatalogModules.Set(float64(modules))
	m.CatalogOps.Set(float64(operators))
	m.CatalogErrors.Set(float64(errs))
}

// RecordDescribe records one signature lookup
func (m *Metrics) RecordDescribe(strategy string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Describes.WithLabelValues(strategy, result(err)).Inc()
	m.DescribeLatency.WithLabelValues(strategy).Observe(d.Seconds())
}

// RecordDAGSave records one DAG save attempt
func (m *Metrics) RecordDAGSave(err error) {
	if m == nil {
		return
	}
	m.DAGSaves.WithLabelValues(result(err)).Inc()
}

// RecordHTTPRequest records one served request. path is the route pattern,
// not the raw URL
func (m *Metrics) RecordHTTPRequest(
	method, path string, status int, d time.Duration,
) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
