// Package metrics exposes Prometheus counters for session lifecycle and shop API traffic.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/fastygo/storefront/domain"
)

const namespace = "storefront"

// Recorder implements session.Observer and shopapi.CallObserver.
type Recorder struct {
	registry *prometheus.Registry

	sessionsSaved   *prometheus.CounterVec
	sessionsCleared *prometheus.CounterVec
	storageErrors   *prometheus.CounterVec
	logins          *prometheus.CounterVec
	remoteCalls     *prometheus.CounterVec
	remoteDuration  *prometheus.HistogramVec
}

// New registers every collector on a private registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		sessionsSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "saved_total",
			Help:      "Sessions persisted after a successful login.",
		}, []string{"namespace"}),
		sessionsCleared: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "cleared_total",
			Help:      "Sessions removed, by reason (cleared, expired, idle, malformed).",
		}, []string{"namespace", "reason"}),
		storageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Profile storage operations that failed.",
		}, []string{"namespace", "op"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by surface and outcome.",
		}, []string{"namespace", "outcome"}),
		remoteCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shopapi",
			Name:      "calls_total",
			Help:      "Calls to the shop API by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		remoteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "shopapi",
			Name:      "call_duration_seconds",
			Help:      "Shop API call latency.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"endpoint"}),
	}
}

func (r *Recorder) SessionSaved(ns domain.Namespace) {
	r.sessionsSaved.WithLabelValues(ns.String()).Inc()
}

func (r *Recorder) SessionCleared(ns domain.Namespace, reason string) {
	r.sessionsCleared.WithLabelValues(ns.String(), reason).Inc()
}

func (r *Recorder) StorageFailed(ns domain.Namespace, op string) {
	r.storageErrors.WithLabelValues(ns.String(), op).Inc()
}

func (r *Recorder) Login(ns domain.Namespace, outcome string) {
	r.logins.WithLabelValues(ns.String(), outcome).Inc()
}

func (r *Recorder) RemoteCall(endpoint, outcome string, elapsed time.Duration) {
	r.remoteCalls.WithLabelValues(endpoint, outcome).Inc()
	r.remoteDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
