// Package script decodes YAML replay scripts: a list of series and the data and
// time-scale operations to apply to them in order.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/schema"
	"gopkg.in/yaml.v3"
)

// StepOp names the operation of one replay step.
type StepOp string

// All step operations supported.
const (
	OpSet           StepOp = "set"
	OpUpdate        StepOp = "update"
	OpRemove        StepOp = "remove"
	OpLoad          StepOp = "load" // set data from the bar store
	OpFitContent    StepOp = "fit_content"
	OpRange         StepOp = "range"
	OpBarSpacing    StepOp = "bar_spacing"
	OpRightOffset   StepOp = "right_offset"
	OpReset         StepOp = "reset"
	OpAnimate       StepOp = "animate"
	OpStopAnimation StepOp = "stop_animation"
	OpCrosshair     StepOp = "crosshair"
)

// IsData reports whether the step mutates series data.
func (op StepOp) IsData() bool {
	switch op {
	case OpSet, OpUpdate, OpRemove, OpLoad:
		return true
	}
	return false
}

// Script is a decoded replay script.
type Script struct {
	// Axis overrides the configured axis kind when set.
	Axis   schema.AxisKind `yaml:"axis,omitempty"`
	Series []SeriesDef     `yaml:"series"`
	Steps  []Step          `yaml:"steps"`
}

// SeriesDef declares a series used by the steps.
type SeriesDef struct {
	Name string            `yaml:"name"`
	Kind schema.SeriesKind `yaml:"kind,omitempty"` // defaults to line
	Pane int               `yaml:"pane,omitempty"`
}

// Step is one replay operation. Only the fields used by Op are read.
type Step struct {
	Op         StepOp               `yaml:"op"`
	Series     string               `yaml:"series,omitempty"`
	Data       []schema.DataItem    `yaml:"data,omitempty"`
	Item       *schema.DataItem     `yaml:"item,omitempty"`
	Historical bool                 `yaml:"historical,omitempty"`
	Persist    bool                 `yaml:"persist,omitempty"` // also append the item to the bar store
	Range      *schema.LogicalRange `yaml:"range,omitempty"`
	Value      float64              `yaml:"value,omitempty"`     // bar spacing or right offset
	Animation  string               `yaml:"animation,omitempty"` // opaque animation label
	Source     string               `yaml:"source,omitempty"`    // stored series name for load, defaults to Series
}

// Label returns a short human-readable description of the step.
func (s Step) Label() string {
	if s.Series == "" {
		return string(s.Op)
	}
	return fmt.Sprintf("%s %s", s.Op, s.Series)
}

// Load reads and validates the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	sc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid script %s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a script.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Script
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("script is empty")
		}
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks series declarations and step arguments, filling defaults in place.
func (sc *Script) Validate() error {
	if sc.Axis != "" {
		if _, ok := schema.ValidAxisKinds[sc.Axis]; !ok {
			return fmt.Errorf("invalid axis %q. Must be time or index", sc.Axis)
		}
	}

	declared := make(map[string]struct{}, len(sc.Series))
	for i := range sc.Series {
		def := &sc.Series[i]
		if def.Name == "" {
			return fmt.Errorf("series %d has no name", i)
		}
		if _, dup := declared[def.Name]; dup {
			return fmt.Errorf("series %q declared twice", def.Name)
		}
		declared[def.Name] = struct{}{}
		if def.Kind == "" {
			def.Kind = schema.LineSeries
		}
		if _, ok := schema.ValidSeriesKinds[def.Kind]; !ok {
			return fmt.Errorf("series %q: %w: %q", def.Name, schema.ErrUnknownSeriesKind, def.Kind)
		}
		if def.Pane < contract.DefaultPane || def.Pane > contract.MaxPane {
			return fmt.Errorf("series %q: pane must be between %d and %d", def.Name, contract.DefaultPane, contract.MaxPane)
		}
	}

	for i, step := range sc.Steps {
		if err := validateStep(step, declared); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}
	return nil
}

func validateStep(step Step, declared map[string]struct{}) error {
	if step.Op.IsData() {
		if step.Series == "" {
			return errors.New("series is required")
		}
		if _, ok := declared[step.Series]; !ok {
			return fmt.Errorf("series %q is not declared", step.Series)
		}
	}

	if step.Persist && step.Op != OpUpdate {
		return errors.New("persist is only supported by update")
	}

	switch step.Op {
	case OpSet, OpRemove, OpLoad:
	case OpUpdate:
		if step.Item == nil {
			return errors.New("item is required")
		}
	case OpRange:
		if step.Range == nil {
			return errors.New("range is required")
		}
		if step.Range.From > step.Range.To {
			return fmt.Errorf("range from %v is after to %v", step.Range.From, step.Range.To)
		}
	case OpBarSpacing:
		if step.Value <= 0 {
			return errors.New("bar spacing must be positive")
		}
	case OpFitContent, OpRightOffset, OpReset, OpAnimate, OpStopAnimation, OpCrosshair:
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}
