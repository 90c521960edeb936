// Package metrics exports pool task outcomes as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utkarsh5026/parmap/pool"
)

// Collector counts finished pool tasks. Attach it with pool.WithTaskHook(c.Hook()).
type Collector struct {
	tasks    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	timeouts prometheus.Counter
	retries  prometheus.Counter
}

// NewCollector registers the task metrics on reg under namespace.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		tasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Total number of finished tasks",
			},
			[]string{"outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Task run time in seconds, retries included",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
			[]string{"outcome"},
		),
		timeouts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "timeouts_total",
				Help:      "Total number of tasks abandoned at their deadline",
			},
		),
		retries: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "task_retries_total",
				Help:      "Total number of task attempts beyond the first",
			},
		),
	}
}

// Observe records one finished task.
func (c *Collector) Observe(ev pool.TaskEvent) {
	outcome := ev.Kind.String()

	c.tasks.WithLabelValues(outcome).Inc()
	c.duration.WithLabelValues(outcome).Observe(ev.Duration.Seconds())
	if ev.Kind == pool.TimedOut {
		c.timeouts.Inc()
	}
	if ev.Attempts > 1 {
		c.retries.Add(float64(ev.Attempts - 1))
	}
}

// Hook returns Observe as a pool task hook.
func (c *Collector) Hook() func(pool.TaskEvent) {
	return c.Observe
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
