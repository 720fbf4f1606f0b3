package core

import (
	"maps"
	"slices"

	"github.com/huangsam/chartaxis/core/mask"
	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/internal/telemetry"
	"github.com/huangsam/chartaxis/schema"
)

// Session drives a DataLayer the way a chart does: every mutation raises an invalidation
// mask that accumulates until the render loop drains it.
type Session[T any] struct {
	layer   *DataLayer[T]
	panes   map[schema.SeriesHandle]int
	pending *mask.Mask
	metrics *telemetry.Metrics
}

// NewSession creates a session over a fresh data layer. metrics may be nil.
func NewSession[T any](behavior contract.HorzScaleBehavior[T], metrics *telemetry.Metrics, opts ...Option[T]) *Session[T] {
	return &Session[T]{
		layer:   NewDataLayer(behavior, opts...),
		panes:   make(map[schema.SeriesHandle]int),
		metrics: metrics,
	}
}

// Layer returns the underlying data layer.
func (s *Session[T]) Layer() *DataLayer[T] {
	return s.layer
}

// AddSeries registers a series shown on the given pane.
func (s *Session[T]) AddSeries(kind schema.SeriesKind, pane int, opts SeriesOptions) (schema.SeriesHandle, error) {
	h, err := s.layer.RegisterSeries(kind, opts)
	s.metrics.ObserveOperation("register", err)
	if err != nil {
		return 0, err
	}
	s.panes[h] = pane
	return h, nil
}

// Pane returns the pane a series is shown on.
func (s *Session[T]) Pane(h schema.SeriesHandle) (int, bool) {
	pane, ok := s.panes[h]
	return pane, ok
}

// SetData replaces the data of a series.
func (s *Session[T]) SetData(h schema.SeriesHandle, items []schema.DataItem) (schema.DataUpdateResponse[T], error) {
	resp, err := s.layer.SetSeriesData(h, items)
	return s.afterData("set", h, resp, err)
}

// Update writes one item to a series.
func (s *Session[T]) Update(h schema.SeriesHandle, item schema.DataItem, historical bool) (schema.DataUpdateResponse[T], error) {
	resp, err := s.layer.UpdateSeriesData(h, item, historical)
	return s.afterData("update", h, resp, err)
}

// RemoveSeries clears a series and forgets it.
func (s *Session[T]) RemoveSeries(h schema.SeriesHandle) (schema.DataUpdateResponse[T], error) {
	resp, err := s.layer.RemoveSeries(h)
	resp, err = s.afterData("remove", h, resp, err)
	if err == nil {
		delete(s.panes, h)
	}
	return resp, err
}

// MoveCrosshair requests a repaint of the crosshair layer only.
func (s *Session[T]) MoveCrosshair() {
	s.raise(mask.Cursor())
}

// FitContent requests that the whole axis fits the viewport.
func (s *Session[T]) FitContent() {
	m := mask.Light()
	m.SetFitContent()
	s.raise(m)
}

// SetVisibleRange requests a logical range.
func (s *Session[T]) SetVisibleRange(r schema.LogicalRange) {
	m := mask.Light()
	m.ApplyRange(r)
	s.raise(m)
}

// SetBarSpacing requests a new bar spacing.
func (s *Session[T]) SetBarSpacing(spacing float64) {
	m := mask.Light()
	m.SetBarSpacing(spacing)
	s.raise(m)
}

// SetRightOffset requests a new right offset.
func (s *Session[T]) SetRightOffset(offset float64) {
	m := mask.Light()
	m.SetRightOffset(offset)
	s.raise(m)
}

// ResetTimeScale requests the default time scale.
func (s *Session[T]) ResetTimeScale() {
	m := mask.Light()
	m.ResetTimeScale()
	s.raise(m)
}

// StartAnimation queues an animation handle for the render scheduler.
func (s *Session[T]) StartAnimation(animation any) {
	m := mask.Light()
	m.SetTimeScaleAnimation(animation)
	s.raise(m)
}

// StopAnimation asks the render scheduler to stop a running animation.
func (s *Session[T]) StopAnimation() {
	m := mask.Light()
	m.StopTimeScaleAnimation()
	s.raise(m)
}

// Drain hands over the accumulated mask and starts a new one. It returns nil when
// nothing was raised since the last drain.
func (s *Session[T]) Drain() *mask.Mask {
	m := s.pending
	s.pending = nil
	return m
}

func (s *Session[T]) afterData(
	op string, h schema.SeriesHandle, resp schema.DataUpdateResponse[T], err error,
) (schema.DataUpdateResponse[T], error) {
	s.metrics.ObserveOperation(op, err)
	if err != nil {
		return resp, err
	}
	s.metrics.ObserveAxis(len(s.layer.registry.points), resp.TimeScale.FirstChangedPointIndex)

	if resp.AffectsTimeScale() {
		m := mask.Full()
		panes := slices.Sorted(maps.Values(s.panes))
		for _, pane := range slices.Compact(panes) {
			m.InvalidatePane(pane, schema.PaneInvalidation{Level: schema.InvalidationFull, AutoScale: true})
		}
		s.raise(m)
		return resp, nil
	}
	m := mask.Light()
	m.InvalidatePane(s.panes[h], schema.PaneInvalidation{Level: schema.InvalidationLight, AutoScale: true})
	s.raise(m)
	return resp, nil
}

func (s *Session[T]) raise(m *mask.Mask) {
	s.metrics.ObserveInvalidation(m.FullInvalidation().String())
	if s.pending == nil {
		s.pending = mask.New(schema.InvalidationNone)
	}
	s.pending.Merge(m)
}
