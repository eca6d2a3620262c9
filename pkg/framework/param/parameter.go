// Package param provides parameter metadata, smoothing ramps and the
// control/audio value mirror used by the echo engine.
package param

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidID is returned when a parameter id does not name a registered parameter.
	ErrInvalidID = errors.New("param: invalid parameter id")
	// ErrDuplicateID is returned when two parameters share an id.
	ErrDuplicateID = errors.New("param: duplicate parameter id")
)

// Parameter represents a plugin parameter. Values are always in plain units.
type Parameter struct {
	ID           uint32
	Name         string
	ShortName    string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64
	Flags        uint32

	// Value formatting
	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Flags for parameters
const (
	CanAutomate  uint32 = 1 << 0
	IsReadOnly   uint32 = 1 << 1
	IsWrapAround uint32 = 1 << 2
	IsHidden     uint32 = 1 << 4
	IsBypass     uint32 = 1 << 16
)

// Info is the host-visible metadata of a parameter.
type Info struct {
	ID        uint32
	Name      string
	ShortName string
	Unit      string
	Min       float64
	Max       float64
	Default   float64
	Flags     uint32
}

// Automatable reports whether the host may record automation for the parameter.
func (i Info) Automatable() bool {
	return i.Flags&CanAutomate != 0
}

// Info returns the parameter metadata.
func (p *Parameter) Info() Info {
	return Info{
		ID:        p.ID,
		Name:      p.Name,
		ShortName: p.ShortName,
		Unit:      p.Unit,
		Min:       p.Min,
		Max:       p.Max,
		Default:   p.DefaultValue,
		Flags:     p.Flags,
	}
}

// Clamp limits a plain value to the parameter range.
func (p *Parameter) Clamp(plain float64) float64 {
	if plain < p.Min {
		return p.Min
	}
	if plain > p.Max {
		return p.Max
	}
	return plain
}

// SetFormatter sets custom value formatting
func (p *Parameter) SetFormatter(format func(float64) string, parse func(string) (float64, error)) {
	p.formatFunc = format
	p.parseFunc = parse
}

// FormatValue returns the display text of a plain value
func (p *Parameter) FormatValue(plain float64) string {
	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}

	if p.Unit != "" {
		return fmt.Sprintf("%.2f %s", plain, p.Unit)
	}
	return fmt.Sprintf("%.2f", plain)
}

// ParseValue parses display text into a plain value clamped to the range.
func (p *Parameter) ParseValue(str string) (float64, error) {
	var (
		plain float64
		err   error
	)
	if p.parseFunc != nil {
		plain, err = p.parseFunc(str)
	} else {
		str = strings.TrimSpace(str)
		if p.Unit != "" {
			str = strings.TrimSpace(strings.TrimSuffix(str, p.Unit))
		}
		plain, err = strconv.ParseFloat(str, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("param %q: %w", p.Name, err)
	}
	return p.Clamp(plain), nil
}

// Normalize converts plain value to normalized (0-1)
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	normalized := (plain - p.Min) / (p.Max - p.Min)
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	return p.Min + normalized*(p.Max-p.Min)
}
