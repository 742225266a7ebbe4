// Package metrics exposes authentication counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "forestpest_auth"

const (
	LoginSuccess  = "success"
	LoginRejected = "rejected"
	LoginDisabled = "disabled"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	logins         *prometheus.CounterVec
	evictions      prometheus.Counter
	revocations    *prometheus.CounterVec
	swept          *prometheus.CounterVec
	passwordResets *prometheus.CounterVec
	blacklistSize  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "Sessions deactivated because the user exceeded the concurrent session cap.",
		}),
		revocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_revoked_total",
			Help:      "Tokens added to the blacklist by reason.",
		}, []string{"reason"}),
		swept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_removed_total",
			Help:      "Expired entries removed by the cleanup job.",
		}, []string{"store"}),
		passwordResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_resets_total",
			Help:      "Password reset events by stage.",
		}, []string{"stage"}),
		blacklistSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blacklist_entries",
			Help:      "Blacklist size after the last cleanup.",
		}),
	}
	m.registry.MustRegister(
		m.logins,
		m.evictions,
		m.revocations,
		m.swept,
		m.passwordResets,
		m.blacklistSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionEvicted() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

func (m *Metrics) TokensRevoked(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.revocations.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) Swept(store string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.swept.WithLabelValues(store).Add(float64(n))
}

func (m *Metrics) PasswordReset(stage string) {
	if m == nil {
		return
	}
	m.passwordResets.WithLabelValues(stage).Inc()
}

func (m *Metrics) BlacklistSize(n int) {
	if m == nil {
		return
	}
	m.blacklistSize.Set(float64(n))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
