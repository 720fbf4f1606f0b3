package schema

// InvalidationLevel orders how much of a pane must be redrawn.
type InvalidationLevel int

// Invalidation levels, from cheapest to most expensive.
const (
	InvalidationNone   InvalidationLevel = iota // nothing to do
	InvalidationCursor                          // repaint the crosshair layer only
	InvalidationLight                           // recompute layout without autoscale and repaint
	InvalidationFull                            // full relayout, autoscale and repaint
)

// String implements fmt.Stringer.
func (l InvalidationLevel) String() string {
	switch l {
	case InvalidationCursor:
		return "cursor"
	case InvalidationLight:
		return "light"
	case InvalidationFull:
		return "full"
	default:
		return "none"
	}
}

// MarshalText renders the level by name in JSON output.
func (l InvalidationLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// PaneInvalidation is the pending redraw request of one pane.
type PaneInvalidation struct {
	Level     InvalidationLevel `json:"level"`
	AutoScale bool              `json:"autoScale"`
}

// TimeScaleOpType identifies a queued time-axis operation.
type TimeScaleOpType int

// Time-scale operation types.
const (
	OpFitContent TimeScaleOpType = iota
	OpApplyRange
	OpApplyBarSpacing
	OpApplyRightOffset
	OpReset
	OpAnimation
	OpStopAnimation
)

// String implements fmt.Stringer.
func (t TimeScaleOpType) String() string {
	switch t {
	case OpFitContent:
		return "fit-content"
	case OpApplyRange:
		return "apply-range"
	case OpApplyBarSpacing:
		return "apply-bar-spacing"
	case OpApplyRightOffset:
		return "apply-right-offset"
	case OpReset:
		return "reset"
	case OpAnimation:
		return "animation"
	default:
		return "stop-animation"
	}
}

// MarshalText renders the operation type by name in JSON output.
func (t TimeScaleOpType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// LogicalRange is a range of logical bar indices on the time axis.
type LogicalRange struct {
	From float64 `json:"from" yaml:"from"`
	To   float64 `json:"to" yaml:"to"`
}

// TimeScaleOp is one queued time-axis operation. Only the field matching Type is meaningful.
type TimeScaleOp struct {
	Type      TimeScaleOpType `json:"type"`
	Range     LogicalRange    `json:"range"`
	Value     float64         `json:"value"`     // bar spacing or right offset
	Animation any             `json:"animation"` // opaque handle consumed by the render scheduler
}

// InvalidationSnapshot is a read-only copy of a pending invalidation mask.
type InvalidationSnapshot struct {
	Global InvalidationLevel        `json:"global"`
	Panes  map[int]PaneInvalidation `json:"panes"`
	Ops    []TimeScaleOp            `json:"timeScaleOps"`
}
