package metrics

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "forgemvc"

// Outcome kinds used as the "kind" label.
const (
	KindOK           = "ok"
	KindNotFound     = "not_found"
	KindUnauthorized = "unauthorized"
	KindError        = "error"
)

// Metrics holds the dispatch collectors.
type Metrics struct {
	Dispatches       *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	LoginRedirects   prometheus.Counter

	reg      prometheus.Registerer
	gatherer prometheus.Gatherer
}

// New creates and registers the collectors. A nil reg uses a fresh registry,
// which is also what Handler serves.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	f := promauto.With(reg)
	return &Metrics{
		Dispatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Dispatched requests by outcome kind and controller",
			},
			[]string{"kind", "controller"},
		),
		DispatchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Time spent in one dispatch cycle",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"kind"},
		),
		LoginRedirects: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_dispatch_total",
				Help:      "Unauthorized requests re-dispatched to the login action",
			},
		),
		reg:      reg,
		gatherer: gatherer,
	}
}

// ObserveDispatch records one dispatch cycle. Safe on a nil receiver.
func (m *Metrics) ObserveDispatch(kind, controller string, d time.Duration) {
	if m == nil {
		return
	}
	if controller == "" {
		controller = "none"
	}
	m.Dispatches.WithLabelValues(kind, controller).Inc()
	m.DispatchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveLoginDispatch counts an unauthorized request handed to the login action.
func (m *Metrics) ObserveLoginDispatch() {
	if m == nil {
		return
	}
	m.LoginRedirects.Inc()
}

// RegisterDB adds connection pool statistics for db under the given name.
func (m *Metrics) RegisterDB(name string, db *sql.DB) error {
	if m == nil || db == nil {
		return nil
	}
	return m.reg.Register(collectors.NewDBStatsCollector(db, name))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
