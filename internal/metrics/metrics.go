package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tweet_agent"

// Metrics holds the service collectors. All methods are nil-safe so
// components can run without a registry in tests.
type Metrics struct {
	registry *prometheus.Registry

	parses       *prometheus.CounterVec
	renders      *prometheus.CounterVec
	renderTime   prometheus.Histogram
	assetMissing *prometheus.CounterVec
	rpcCalls     *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
	notifies     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_total",
			Help:      "Parsed utterances by winning matcher.",
		}, []string{"matcher"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_total",
			Help:      "Render attempts by outcome.",
		}, []string{"outcome"}),
		renderTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent composing and encoding one screenshot.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		assetMissing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_fallback_total",
			Help:      "Renders that fell back because an asset was unavailable.",
		}, []string{"asset"}),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC requests by method and result code.",
		}, []string{"method", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "JSON-RPC handling time by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		notifies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_total",
			Help:      "Outbound notifications by channel and outcome.",
		}, []string{"channel", "outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.parses, m.renders, m.renderTime, m.assetMissing, m.rpcCalls, m.rpcDuration, m.notifies,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveParse(matcher string) {
	if m == nil {
		return
	}
	m.parses.WithLabelValues(matcher).Inc()
}

func (m *Metrics) ObserveRender(d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failure"
	}
	m.renders.WithLabelValues(outcome).Inc()
	m.renderTime.Observe(d.Seconds())
}

func (m *Metrics) ObserveAssetFallback(asset string) {
	if m == nil {
		return
	}
	m.assetMissing.WithLabelValues(asset).Inc()
}

func (m *Metrics) ObserveRPC(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcCalls.WithLabelValues(method, codeLabel(code)).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) ObserveNotification(channel string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failure"
	}
	m.notifies.WithLabelValues(channel, outcome).Inc()
}

func codeLabel(code int) string {
	switch code {
	case 0:
		return "ok"
	case -32700:
		return "parse_error"
	case -32600:
		return "invalid_request"
	case -32601:
		return "method_not_found"
	case -32602:
		return "invalid_params"
	default:
		return "internal_error"
	}
}
