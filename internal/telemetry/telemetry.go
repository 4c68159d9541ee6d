// Package telemetry holds Prometheus metrics describing the exporter itself.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "instance_monitor"

// Sample results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Telemetry records self-monitoring metrics. A nil *Telemetry is valid and
// records nothing.
type Telemetry struct {
	registry *prometheus.Registry

	scrapesTotal     prometheus.Counter
	scrapeDuration   prometheus.Histogram
	samplesTotal     *prometheus.CounterVec
	sampleDuration   prometheus.Histogram
	updateErrors     *prometheus.CounterVec
	lastSampleSecond prometheus.Gauge
}

// New creates self telemetry on a private registry, including the Go
// runtime and process collectors.
func New() *Telemetry {
	reg := prometheus.NewRegistry()

	t := &Telemetry{
		registry: reg,
		scrapesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrapes_total",
			Help:      "Total number of scrape requests served.",
		}),
		scrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_duration_seconds",
			Help:      "Duration of scrape requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		samplesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Total number of host samples taken, by result.",
		}, []string{"result"}),
		sampleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sample_duration_seconds",
			Help:      "Time spent reading the host sampler in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		updateErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "update_errors_total",
			Help:      "Total number of failed registry updates, by metric.",
		}, []string{"metric"}),
		lastSampleSecond: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_sample_timestamp_seconds",
			Help:      "Unix time of the last successful host sample.",
		}),
	}

	reg.MustRegister(
		t.scrapesTotal,
		t.scrapeDuration,
		t.samplesTotal,
		t.sampleDuration,
		t.updateErrors,
		t.lastSampleSecond,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Pre-create result series so both appear from the first scrape.
	t.samplesTotal.WithLabelValues(ResultOK)
	t.samplesTotal.WithLabelValues(ResultError)

	return t
}

// Handler serves the self metrics in the Prometheus exposition format.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		t.registry,
		promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}),
	)
}

// ObserveScrape records one served scrape.
func (t *Telemetry) ObserveScrape(d time.Duration) {
	if t == nil {
		return
	}
	t.scrapesTotal.Inc()
	t.scrapeDuration.Observe(d.Seconds())
}

// ObserveSample records one sampler call.
func (t *Telemetry) ObserveSample(d time.Duration, err error) {
	if t == nil {
		return
	}
	t.sampleDuration.Observe(d.Seconds())
	if err != nil {
		t.samplesTotal.WithLabelValues(ResultError).Inc()
		return
	}
	t.samplesTotal.WithLabelValues(ResultOK).Inc()
	t.lastSampleSecond.SetToCurrentTime()
}

// UpdateFailed records a registry update that returned an error.
func (t *Telemetry) UpdateFailed(metric string) {
	if t == nil {
		return
	}
	t.updateErrors.WithLabelValues(metric).Inc()
}
