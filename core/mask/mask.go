// Package mask accumulates pending redraw requests between two frames.
package mask

import (
	"maps"
	"slices"

	"github.com/huangsam/chartaxis/schema"
)

// Mask records what must be recomputed or repainted: a global level, per-pane levels
// with autoscale flags, and an ordered queue of time-scale operations.
// The zero value is not usable; create masks with New, Light or Full.
type Mask struct {
	global schema.InvalidationLevel
	panes  map[int]schema.PaneInvalidation
	ops    []schema.TimeScaleOp
}

// New returns an empty mask with the given global level.
func New(level schema.InvalidationLevel) *Mask {
	return &Mask{
		global: level,
		panes:  make(map[int]schema.PaneInvalidation),
	}
}

// Light returns a mask requesting a relayout without autoscale.
func Light() *Mask { return New(schema.InvalidationLight) }

// Full returns a mask requesting a full relayout with autoscale.
func Full() *Mask { return New(schema.InvalidationFull) }

// Cursor returns a mask that only repaints the crosshair layer.
func Cursor() *Mask { return New(schema.InvalidationCursor) }

// InvalidatePane folds inv into the pane's entry, keeping the higher level and OR-ing autoscale.
func (m *Mask) InvalidatePane(pane int, inv schema.PaneInvalidation) {
	prev, ok := m.panes[pane]
	if ok {
		inv.Level = max(inv.Level, prev.Level)
		inv.AutoScale = inv.AutoScale || prev.AutoScale
	}
	m.panes[pane] = inv
}

// FullInvalidation returns the global level.
func (m *Mask) FullInvalidation() schema.InvalidationLevel {
	return m.global
}

// InvalidateForPane returns the effective request for a pane: the higher of the global
// level and the pane's own entry.
func (m *Mask) InvalidateForPane(pane int) schema.PaneInvalidation {
	inv := m.panes[pane]
	inv.Level = max(inv.Level, m.global)
	return inv
}

// Panes returns the panes that carry an explicit entry, in ascending order.
func (m *Mask) Panes() []int {
	return slices.Sorted(maps.Keys(m.panes))
}

// TimeScaleOps returns a copy of the queued time-scale operations.
func (m *Mask) TimeScaleOps() []schema.TimeScaleOp {
	return slices.Clone(m.ops)
}

// Empty reports whether the mask requests nothing at all.
func (m *Mask) Empty() bool {
	return m.global == schema.InvalidationNone && len(m.panes) == 0 && len(m.ops) == 0
}

// SetFitContent replaces the queue with a fit-content request.
func (m *Mask) SetFitContent() {
	m.StopTimeScaleAnimation()
	m.ops = []schema.TimeScaleOp{{Type: schema.OpFitContent}}
}

// ApplyRange replaces the queue with a request to show the given logical range.
func (m *Mask) ApplyRange(r schema.LogicalRange) {
	m.StopTimeScaleAnimation()
	m.ops = []schema.TimeScaleOp{{Type: schema.OpApplyRange, Range: r}}
}

// ResetTimeScale replaces the queue with a reset request.
func (m *Mask) ResetTimeScale() {
	m.StopTimeScaleAnimation()
	m.ops = []schema.TimeScaleOp{{Type: schema.OpReset}}
}

// SetBarSpacing queues a bar spacing change after any earlier operations.
func (m *Mask) SetBarSpacing(spacing float64) {
	m.StopTimeScaleAnimation()
	m.ops = append(m.ops, schema.TimeScaleOp{Type: schema.OpApplyBarSpacing, Value: spacing})
}

// SetRightOffset queues a right offset change after any earlier operations.
func (m *Mask) SetRightOffset(offset float64) {
	m.StopTimeScaleAnimation()
	m.ops = append(m.ops, schema.TimeScaleOp{Type: schema.OpApplyRightOffset, Value: offset})
}

// SetTimeScaleAnimation queues an animation, replacing a previously queued one.
func (m *Mask) SetTimeScaleAnimation(animation any) {
	m.removeAnimation()
	m.ops = append(m.ops, schema.TimeScaleOp{Type: schema.OpAnimation, Animation: animation})
}

// StopTimeScaleAnimation drops a queued animation and asks the scheduler to stop a running one.
// At most one stop request is kept in the queue.
func (m *Mask) StopTimeScaleAnimation() {
	m.removeAnimation()
	if slices.ContainsFunc(m.ops, isOp(schema.OpStopAnimation)) {
		return
	}
	m.ops = append(m.ops, schema.TimeScaleOp{Type: schema.OpStopAnimation})
}

// Merge folds other into m. Levels take the maximum and time-scale operations are
// replayed in order through the same rules as direct calls.
func (m *Mask) Merge(other *Mask) {
	if other == nil {
		return
	}
	m.global = max(m.global, other.global)
	for _, pane := range other.Panes() {
		m.InvalidatePane(pane, other.panes[pane])
	}
	for _, op := range other.ops {
		m.apply(op)
	}
}

// Snapshot returns a detached copy suitable for rendering.
func (m *Mask) Snapshot() schema.InvalidationSnapshot {
	return schema.InvalidationSnapshot{
		Global: m.global,
		Panes:  maps.Clone(m.panes),
		Ops:    m.TimeScaleOps(),
	}
}

func (m *Mask) apply(op schema.TimeScaleOp) {
	switch op.Type {
	case schema.OpFitContent:
		m.SetFitContent()
	case schema.OpApplyRange:
		m.ApplyRange(op.Range)
	case schema.OpApplyBarSpacing:
		m.SetBarSpacing(op.Value)
	case schema.OpApplyRightOffset:
		m.SetRightOffset(op.Value)
	case schema.OpReset:
		m.ResetTimeScale()
	case schema.OpAnimation:
		m.SetTimeScaleAnimation(op.Animation)
	case schema.OpStopAnimation:
		m.StopTimeScaleAnimation()
	}
}

func (m *Mask) removeAnimation() {
	m.ops = slices.DeleteFunc(m.ops, isOp(schema.OpAnimation))
}

func isOp(t schema.TimeScaleOpType) func(schema.TimeScaleOp) bool {
	return func(op schema.TimeScaleOp) bool { return op.Type == t }
}
