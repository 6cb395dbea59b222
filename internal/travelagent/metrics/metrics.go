// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/innovationmech/travelagent/internal/travelagent/model"
	"github.com/innovationmech/travelagent/internal/travelagent/saga"
)

const (
	namespace = "travel_agent"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Config contains configuration for the Prometheus collector.
type Config struct {
	// Registry is the Prometheus registry to use. If nil, a new registry is created.
	Registry *prometheus.Registry

	// DurationBuckets defines the buckets for duration histograms.
	DurationBuckets []float64

	// RuntimeCollectors registers the Go runtime and process collectors.
	RuntimeCollectors bool
}

// Collector exports saga, remote call and orphan metrics.
// It satisfies saga.Observer and the client call observer.
type Collector struct {
	sagaFinishedTotal *prometheus.CounterVec
	sagaDuration      *prometheus.HistogramVec

	stepTotal    *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec

	compensationTotal *prometheus.CounterVec

	remoteCallTotal    *prometheus.CounterVec
	remoteCallDuration *prometheus.HistogramVec

	orphanedBookingsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewCollector creates a collector and registers its metrics.
func NewCollector(cfg *Config) (*Collector, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.DurationBuckets == nil {
		cfg.DurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
	}

	c := &Collector{registry: cfg.Registry}

	c.sagaFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "finished_total",
			Help:      "Total number of finished sagas by final state",
		},
		[]string{"saga", "state"},
	)
	c.sagaDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "duration_seconds",
			Help:      "Saga execution duration including compensation",
			Buckets:   cfg.DurationBuckets,
		},
		[]string{"saga"},
	)
	c.stepTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "step_total",
			Help:      "Total number of executed saga steps by outcome",
		},
		[]string{"saga", "step", "outcome"},
	)
	c.stepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "step_duration_seconds",
			Help:      "Saga step execution duration",
			Buckets:   cfg.DurationBuckets,
		},
		[]string{"saga", "step"},
	)
	c.compensationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saga",
			Name:      "compensation_total",
			Help:      "Total number of compensations by outcome",
		},
		[]string{"saga", "step", "outcome"},
	)
	c.remoteCallTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "calls_total",
			Help:      "Total number of remote booking service calls by outcome",
		},
		[]string{"service", "operation", "outcome"},
	)
	c.remoteCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "call_duration_seconds",
			Help:      "Remote booking service call duration including retries",
			Buckets:   cfg.DurationBuckets,
		},
		[]string{"service", "operation"},
	)
	c.orphanedBookingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_bookings_total",
			Help:      "Total number of remote bookings left behind by a failed compensation",
		},
		[]string{"service"},
	)

	toRegister := []prometheus.Collector{
		c.sagaFinishedTotal,
		c.sagaDuration,
		c.stepTotal,
		c.stepDuration,
		c.compensationTotal,
		c.remoteCallTotal,
		c.remoteCallDuration,
		c.orphanedBookingsTotal,
	}
	if cfg.RuntimeCollectors {
		toRegister = append(toRegister,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, m := range toRegister {
		if err := c.registry.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}

// StepFinished implements saga.Observer.
func (c *Collector) StepFinished(sagaName, step string, duration time.Duration, err error) {
	c.stepTotal.WithLabelValues(sagaName, step, outcome(err)).Inc()
	c.stepDuration.WithLabelValues(sagaName, step).Observe(duration.Seconds())
}

// CompensationFinished implements saga.Observer.
func (c *Collector) CompensationFinished(sagaName, step string, err error) {
	c.compensationTotal.WithLabelValues(sagaName, step, outcome(err)).Inc()
}

// SagaFinished implements saga.Observer.
func (c *Collector) SagaFinished(sagaName string, state saga.State, duration time.Duration) {
	c.sagaFinishedTotal.WithLabelValues(sagaName, string(state)).Inc()
	c.sagaDuration.WithLabelValues(sagaName).Observe(duration.Seconds())
}

// RemoteCallFinished records one remote booking service call.
func (c *Collector) RemoteCallFinished(service model.Service, operation string, duration time.Duration, err error) {
	c.remoteCallTotal.WithLabelValues(service.String(), operation, outcome(err)).Inc()
	c.remoteCallDuration.WithLabelValues(service.String(), operation).Observe(duration.Seconds())
}

// OrphanRecorded counts a booking whose compensation failed.
func (c *Collector) OrphanRecorded(service model.Service) {
	c.orphanedBookingsTotal.WithLabelValues(service.String()).Inc()
}

var _ saga.Observer = (*Collector)(nil)
