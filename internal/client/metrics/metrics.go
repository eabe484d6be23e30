// Package metrics keeps client-side counters for the query cache and the API
// transport in a private Prometheus registry. Nothing is exported over the
// network; the REPL prints a snapshot on demand.
package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lawdesk"

type Metrics struct {
	registry *prometheus.Registry

	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
	CacheInvalidations *prometheus.CounterVec
	CacheEvictions     prometheus.Counter
	APIRequests        *prometheus.CounterVec
	APIDuration        *prometheus.HistogramVec
	APIRetries         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "hits_total",
			Help: "Query reads served from cache.",
		}, []string{"query"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "misses_total",
			Help: "Query reads that went to the network.",
		}, []string{"query"}),
		CacheInvalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "invalidations_total",
			Help: "Entries marked stale, by tag.",
		}, []string{"tag"}),
		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "evictions_total",
			Help: "Entries dropped after their last subscriber left.",
		}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "requests_total",
			Help: "API calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "api", Name: "request_duration_seconds",
			Help:    "API call latency.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"op"}),
		APIRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "retries_total",
			Help: "Retried API attempts by operation.",
		}, []string{"op"}),
	}
	m.registry.MustRegister(
		m.CacheHits, m.CacheMisses, m.CacheInvalidations, m.CacheEvictions,
		m.APIRequests, m.APIDuration, m.APIRetries,
	)
	return m
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished API call.
func (m *Metrics) ObserveRequest(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(op, outcome).Inc()
	m.APIDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveRetry counts one retried attempt of op.
func (m *Metrics) ObserveRetry(op string) {
	if m == nil {
		return
	}
	m.APIRetries.WithLabelValues(op).Inc()
}

// Snapshot flattens counters into "name{labels}" -> value, sorted by name.
// Histograms contribute their sample count.
func (m *Metrics) Snapshot() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			value := metric.GetCounter().GetValue()
			if h := metric.GetHistogram(); h != nil {
				value = float64(h.GetSampleCount())
			}
			out = append(out, Sample{Name: name, Value: value})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type Sample struct {
	Name  string
	Value float64
}
