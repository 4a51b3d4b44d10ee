// Package metrics holds the Prometheus collectors of one host instance.
// Each instance owns its registry so tests and embedded hosts do not
// collide on the global one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hookhost"

// Unit kinds used as label values.
const (
	KindCommand = "command"
	KindModule  = "module"
	KindConfig  = "config"
)

// Dispatch results used as label values.
const (
	DispatchOK      = "ok"
	DispatchFailed  = "failed"
	DispatchUnknown = "unknown"
)

// Metrics is the set of collectors exported by the host.
type Metrics struct {
	registry *prometheus.Registry

	unitsLoaded  *prometheus.GaugeVec
	loadErrors   *prometheus.CounterVec
	initErrors   prometheus.Counter
	catalogSyncs *prometheus.CounterVec
	dispatches   *prometheus.CounterVec
	reloads      *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, together with the
// standard Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		unitsLoaded: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "units_loaded",
			Help:      "Number of units loaded by the last reload, by kind.",
		}, []string{"kind"}),
		loadErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Units that failed to load, by kind.",
		}, []string{"kind"}),
		initErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "init_errors_total",
			Help:      "Module initializers that failed.",
		}),
		catalogSyncs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_syncs_total",
			Help:      "Completed catalog replacement calls, by result.",
		}, []string{"result"}),
		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Inbound requests handled, by result.",
		}, []string{"result"}),
		reloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Reload cycles run, by kind.",
		}, []string{"kind"}),
	}
}

// Registry returns the registry to expose over HTTP.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveLoad records the outcome of one reload cycle of kind.
func (m *Metrics) ObserveLoad(kind string, loaded, failed int) {
	m.reloads.WithLabelValues(kind).Inc()
	m.unitsLoaded.WithLabelValues(kind).Set(float64(loaded))
	m.loadErrors.WithLabelValues(kind).Add(float64(failed))
}

// ObserveInitErrors records failed module initializers.
func (m *Metrics) ObserveInitErrors(n int) {
	m.initErrors.Add(float64(n))
}

// ObserveSync records a completed catalog call.
func (m *Metrics) ObserveSync(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.catalogSyncs.WithLabelValues(result).Inc()
}

// ObserveDispatch records a handled request.
func (m *Metrics) ObserveDispatch(result string) {
	m.dispatches.WithLabelValues(result).Inc()
}
