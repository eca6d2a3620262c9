package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/justyntemme/goecho/pkg/host"
)

// Script is the automation file format.
//
//	params:
//	  Delay Time: 250
//	  Tone: "4 kHz"
//	automation:
//	  - at: 0.5
//	    param: Mix
//	    value: 0.8
//	gestures:
//	  - at: 1.0
//	    param: Time
//	    values: [200, 220, 240]
type Script struct {
	// Params are applied before the first block.
	Params map[string]Value `yaml:"params"`

	// Automation points are delivered by the host with sample offsets.
	Automation []AutomationPoint `yaml:"automation"`

	// Gestures are control-surface drags: one value per block between a
	// begin and an end marker.
	Gestures []Gesture `yaml:"gestures"`
}

// Value is a parameter value given as a number or as display text ("250 ms").
type Value struct {
	Number float64
	Text   string
	IsText bool
}

// UnmarshalYAML accepts scalars of either kind.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: parameter value must be a scalar", node.Line)
	}
	var f float64
	if err := node.Decode(&f); err == nil {
		*v = Value{Number: f}
		return nil
	}
	*v = Value{Text: node.Value, IsText: true}
	return nil
}

// AutomationPoint is one host automation value.
type AutomationPoint struct {
	At    float64 `yaml:"at"`
	Frame *uint64 `yaml:"frame"`
	Param string  `yaml:"param"`
	Value Value   `yaml:"value"`
}

// Gesture is a control-surface drag starting at At seconds.
type Gesture struct {
	At     float64   `yaml:"at"`
	Param  string    `yaml:"param"`
	Values []float64 `yaml:"values"`
}

// LoadScript reads an automation file.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseScript(f)
}

// ParseScript decodes an automation document. Unknown fields are errors.
func ParseScript(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("automation: %w", err)
	}
	for i, p := range s.Automation {
		if p.At < 0 || math.IsNaN(p.At) {
			return nil, fmt.Errorf("automation[%d]: negative time %v", i, p.At)
		}
	}
	for i, g := range s.Gestures {
		if len(g.Values) == 0 {
			return nil, fmt.Errorf("gestures[%d]: no values", i)
		}
		if g.At < 0 || math.IsNaN(g.At) {
			return nil, fmt.Errorf("gestures[%d]: negative time %v", i, g.At)
		}
	}
	sort.SliceStable(s.Gestures, func(i, j int) bool { return s.Gestures[i].At < s.Gestures[j].At })
	return &s, nil
}

// resolver turns names and text values into parameter ids and plain values.
type resolver struct {
	h *host.Host
}

func (r resolver) id(name string) (uint32, error) {
	id, ok := r.h.ParamByName(name)
	if !ok {
		return 0, fmt.Errorf("unknown parameter %q", name)
	}
	return id, nil
}

func (r resolver) value(id uint32, v Value) (float64, error) {
	if !v.IsText {
		return v.Number, nil
	}
	params := r.h.Extensions().Params
	if params == nil {
		return 0, host.ErrUnsupported
	}
	plain, ok := params.TextToValue(id, v.Text)
	if !ok {
		return 0, fmt.Errorf("cannot parse %q for parameter %d", v.Text, id)
	}
	return plain, nil
}

// Points converts the host automation to frame positions at sampleRate.
func (s *Script) Points(r resolver, sampleRate float64) ([]host.Point, error) {
	points := make([]host.Point, 0, len(s.Automation))
	for i, a := range s.Automation {
		id, err := r.id(a.Param)
		if err != nil {
			return nil, fmt.Errorf("automation[%d]: %w", i, err)
		}
		v, err := r.value(id, a.Value)
		if err != nil {
			return nil, fmt.Errorf("automation[%d]: %w", i, err)
		}
		frame := uint64(math.Round(a.At * sampleRate))
		if a.Frame != nil {
			frame = *a.Frame
		}
		points = append(points, host.Point{Frame: frame, Param: id, Value: v})
	}
	return points, nil
}

// Initial converts the params section, sorted by parameter id.
func (s *Script) Initial(r resolver) ([]host.Point, error) {
	points := make([]host.Point, 0, len(s.Params))
	for name, v := range s.Params {
		id, err := r.id(name)
		if err != nil {
			return nil, fmt.Errorf("params: %w", err)
		}
		plain, err := r.value(id, v)
		if err != nil {
			return nil, fmt.Errorf("params %q: %w", name, err)
		}
		points = append(points, host.Point{Param: id, Value: plain})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Param < points[j].Param })
	return points, nil
}
