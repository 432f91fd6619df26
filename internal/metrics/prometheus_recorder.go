package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	fetchDuration *prom.HistogramVec
	fetchResults  *prom.CounterVec
	intents       *prom.CounterVec
	activations   *prom.CounterVec
	teardowns     *prom.CounterVec
	subscribers   *prom.GaugeVec
}

// NewPrometheusRecorder constructs and registers the woof metrics on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "woof",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of Dog CEO API fetches",
			Buckets:   prom.DefBuckets,
		}, []string{"operation", "result"}),
		fetchResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "woof",
			Name:      "fetch_results_total",
			Help:      "Fetch results by operation and outcome",
		}, []string{"operation", "result"}),
		intents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "woof",
			Name:      "intents_total",
			Help:      "Intents dispatched per screen",
		}, []string{"screen", "intent"}),
		activations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "woof",
			Name:      "stream_activations_total",
			Help:      "State stream activations (first subscriber after idle)",
		}, []string{"screen"}),
		teardowns: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "woof",
			Name:      "stream_teardowns_total",
			Help:      "State stream teardowns after the grace period",
		}, []string{"screen"}),
		subscribers: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "woof",
			Name:      "stream_subscribers",
			Help:      "Current observers per screen",
		}, []string{"screen"}),
	}
	reg.MustRegister(pr.fetchDuration, pr.fetchResults, pr.intents, pr.activations, pr.teardowns, pr.subscribers)
	return pr
}

// Handler returns an http.Handler serving the recorder's registry.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

func (p *PrometheusRecorder) ObserveFetchDuration(op string, d time.Duration, success bool) {
	if p == nil || p.fetchDuration == nil {
		return
	}
	res := resultLabel(success)
	p.fetchDuration.WithLabelValues(op, res).Observe(d.Seconds())
	p.fetchResults.WithLabelValues(op, res).Inc()
}

func (p *PrometheusRecorder) IncIntent(screen, intent string) {
	if p == nil || p.intents == nil {
		return
	}
	p.intents.WithLabelValues(screen, intent).Inc()
}

func (p *PrometheusRecorder) IncActivation(screen string) {
	if p == nil || p.activations == nil {
		return
	}
	p.activations.WithLabelValues(screen).Inc()
}

func (p *PrometheusRecorder) IncTeardown(screen string) {
	if p == nil || p.teardowns == nil {
		return
	}
	p.teardowns.WithLabelValues(screen).Inc()
}

func (p *PrometheusRecorder) AddSubscribers(screen string, delta int) {
	if p == nil || p.subscribers == nil || delta == 0 {
		return
	}
	p.subscribers.WithLabelValues(screen).Add(float64(delta))
}
