// Package metrics exposes Prometheus metrics for the tick loop and the
// sequencer driver.
//
// Each Collector owns its registry, so several engines (or tests) in one
// process never collide on metric names.
package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/tickseq/internal/ir"
)

const namespace = "tickseq"

const (
	subsystemEngine    = "engine"
	subsystemSequencer = "sequencer"
)

// Collector records engine ticks and driver steps.
//
// It implements both engine.TickObserver and sequencer.Observer.
type Collector struct {
	registry *prometheus.Registry

	ticks        prometheus.Counter
	tickErrors   prometheus.Counter
	tickDuration prometheus.Summary
	steps        *prometheus.CounterVec
	retries      prometheus.Histogram
	starvation   prometheus.Counter
}

// New creates a collector with a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	c := &Collector{
		registry: reg,
		ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemEngine,
			Name:      "ticks_total",
			Help:      "Total number of ticks run",
		}),
		tickErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemEngine,
			Name:      "tick_errors_total",
			Help:      "Total number of ticks in which at least one system failed",
		}),
		tickDuration: f.NewSummary(prometheus.SummaryOpts{
			Namespace: namespace,
			Subsystem: subsystemEngine,
			Name:      "tick_duration_milliseconds",
			Help:      "Time taken to run one tick (in milliseconds)",
			Objectives: map[float64]float64{
				0.5:  0.01,
				0.9:  0.01,
				0.95: 0.01,
				0.99: 0.01,
			},
		}),
		steps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemSequencer,
			Name:      "steps_total",
			Help:      "Total number of front-handle invocations by outcome",
		}, []string{"outcome"}),
		retries: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemSequencer,
			Name:      "step_retries",
			Help:      "Pending retries needed by one step",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 64, 256, 1024},
		}),
		starvation: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemEngine,
			Name:      "starved_total_seconds",
			Help:      "Total seconds the tick loop was starved",
		}),
	}

	for _, o := range []ir.Outcome{ir.OutcomeYielded, ir.OutcomeCompleted, ir.OutcomeFailed, ir.OutcomeExhausted} {
		c.steps.WithLabelValues(string(o)).Add(0)
	}
	return c
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveTick records one completed tick.
func (c *Collector) ObserveTick(_ uint64, took time.Duration, err error) {
	c.ticks.Inc()
	c.tickDuration.Observe(float64(took.Microseconds()) / 1000)
	if err != nil {
		c.tickErrors.Inc()
	}
}

// ObserveStep records one driver step.
func (c *Collector) ObserveStep(step ir.Step) {
	c.steps.WithLabelValues(string(step.Outcome)).Inc()
	c.retries.Observe(float64(step.Retries))
}

// AddStarvation adds d to the starvation counter. Its signature matches the
// engine's starvation callback.
func (c *Collector) AddStarvation(d time.Duration) {
	c.starvation.Add(d.Seconds())
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// NewServer returns an HTTP server exposing /metrics on addr. The caller
// owns its lifecycle.
func (c *Collector) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	return &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
	}
}

// Serve runs srv until it is shut down. http.ErrServerClosed is not an
// error.
func Serve(srv *http.Server, logger *slog.Logger) error {
	logger.Info("metrics endpoint listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
