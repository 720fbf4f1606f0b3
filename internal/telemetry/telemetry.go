// Package telemetry provides Prometheus collectors for chart sessions.
package telemetry

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Operation outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the collectors of one session. A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	operations   *prometheus.CounterVec
	timePoints   prometheus.Gauge
	firstChanged prometheus.Histogram
	masks        *prometheus.CounterVec
}

// New creates collectors registered on a fresh private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chartaxis_data_operations_total",
			Help: "Data layer operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		timePoints: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chartaxis_time_points",
			Help: "Current number of points on the time axis",
		}),
		firstChanged: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chartaxis_first_changed_index",
			Help:    "First changed axis position of updates that changed the axis",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		masks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chartaxis_invalidations_total",
			Help: "Invalidation masks raised by level",
		}, []string{"level"}),
	}
}

// ObserveOperation counts one data operation.
func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveAxis records the axis size and, when the axis changed, the first changed position.
func (m *Metrics) ObserveAxis(points, firstChanged int) {
	if m == nil {
		return
	}
	m.timePoints.Set(float64(points))
	if firstChanged >= 0 {
		m.firstChanged.Observe(float64(firstChanged))
	}
}

// ObserveInvalidation counts a raised mask.
func (m *Metrics) ObserveInvalidation(level string) {
	if m == nil {
		return
	}
	m.masks.WithLabelValues(level).Inc()
}

// WriteText gathers the registry and writes it in the Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.Registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to encode metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
