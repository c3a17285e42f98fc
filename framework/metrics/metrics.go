// Package metrics exports Prometheus counters and histograms for callback
// resolution. A Collector is installed on a resolver with SetObserver.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-callable/framework/callable"
)

// Outcome labels.
const (
	OutcomeOK              = "ok"
	OutcomeClassNotFound   = "class_not_found"
	OutcomeMethodNotFound  = "method_not_found"
	OutcomeNotInstantiable = "not_instantiable"
	OutcomeNotResolvable   = "not_resolvable"
	OutcomeError           = "error"
)

// Collector implements callable.Observer.
type Collector struct {
	resolveTotal    *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	instancesTotal  *prometheus.CounterVec
}

var _ callable.Observer = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		resolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callable_resolve_total",
				Help: "Number of callback resolutions by result kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		resolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "callable_resolve_duration_seconds",
				Help:    "Time taken to resolve a callback spec.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		instancesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callable_instances_total",
				Help: "Number of class instances constructed during resolution.",
			},
			[]string{"class"},
		),
	}

	for _, col := range []prometheus.Collector{c.resolveTotal, c.resolveDuration, c.instancesTotal} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) ObserveResolve(kind callable.Kind, err error, elapsed time.Duration) {
	c.resolveTotal.WithLabelValues(string(kind), Outcome(err)).Inc()
	c.resolveDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveInstance(class string) {
	c.instancesTotal.WithLabelValues(class).Inc()
}

// Outcome maps a resolution error onto its label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, callable.ErrClassNotFound):
		return OutcomeClassNotFound
	case errors.Is(err, callable.ErrMethodNotFound):
		return OutcomeMethodNotFound
	case errors.Is(err, callable.ErrNotInstantiable):
		return OutcomeNotInstantiable
	case errors.Is(err, callable.ErrNotResolvable):
		return OutcomeNotResolvable
	}
	return OutcomeError
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
