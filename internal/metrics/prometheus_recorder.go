package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration   prom.Histogram
	buildOutcome    *prom.CounterVec
	pagesScanned    prom.Gauge
	redirects       prom.Gauge
	rebuilds        *prom.CounterVec
	redirectsServed prom.Counter
}

// NewPrometheusRecorder constructs and registers the redirgen metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "redirgen",
			Name:      "build_duration_seconds",
			Help:      "Total redirect build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "redirgen",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		pagesScanned: prom.NewGauge(prom.GaugeOpts{
			Namespace: "redirgen",
			Name:      "pages_scanned",
			Help:      "Content nodes seen by the last scan",
		}),
		redirects: prom.NewGauge(prom.GaugeOpts{
			Namespace: "redirgen",
			Name:      "redirects_resolved",
			Help:      "Valid redirect pairs resolved by the last build",
		}),
		rebuilds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "redirgen",
			Name:      "rebuilds_total",
			Help:      "Rebuild count by trigger",
		}, []string{"trigger"}),
		redirectsServed: prom.NewCounter(prom.CounterOpts{
			Namespace: "redirgen",
			Name:      "redirects_served_total",
			Help:      "Redirect responses served by the preview server",
		}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.pagesScanned, pr.redirects, pr.rebuilds, pr.redirectsServed)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetPagesScanned(n int) { p.pagesScanned.Set(float64(n)) }

func (p *PrometheusRecorder) SetRedirectsResolved(n int) { p.redirects.Set(float64(n)) }

func (p *PrometheusRecorder) IncRebuild(trigger string) {
	p.rebuilds.WithLabelValues(trigger).Inc()
}

func (p *PrometheusRecorder) IncRedirectServed() { p.redirectsServed.Inc() }
