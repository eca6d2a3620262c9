package plugin

import (
	"errors"
	"fmt"
	"math"

	"github.com/justyntemme/goecho/pkg/framework/bus"
	"github.com/justyntemme/goecho/pkg/framework/param"
	"github.com/justyntemme/goecho/pkg/framework/state"
)

var (
	// ErrNotActive is returned when an operation needs an activated plugin.
	ErrNotActive = errors.New("plugin: not active")
	// ErrAlreadyActive is returned by Activate on an active plugin.
	ErrAlreadyActive = errors.New("plugin: already active")
	// ErrInvalidActivation is returned for an unusable sample rate or block size.
	ErrInvalidActivation = errors.New("plugin: invalid activation")
)

// Base provides core functionality for all plugins: metadata, parameters,
// state layout, ports and the activate/process lifecycle.
type Base struct {
	Info   Info
	params *param.Registry
	state  *state.Manager
	buses  *bus.Configuration

	sampleRate float64
	minFrames  uint32
	maxFrames  uint32
	active     bool
	processing bool
}

// NewBase creates a new plugin base
func NewBase(info Info, buses *bus.Configuration, params ...*param.Parameter) (*Base, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	registry, err := param.NewRegistry(params...)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", info.ID, err)
	}
	if buses == nil {
		buses = bus.NewStereoConfiguration("Stereo In", "Stereo Out")
	}

	return &Base{
		Info:   info,
		params: registry,
		state:  state.NewManager(registry),
		buses:  buses,
	}, nil
}

// Parameters returns the parameter registry
func (b *Base) Parameters() *param.Registry { return b.params }

// State returns the state blob codec
func (b *Base) State() *state.Manager { return b.state }

// Buses returns the bus configuration
func (b *Base) Buses() *bus.Configuration { return b.buses }

// SampleRate returns the sample rate of the current activation
func (b *Base) SampleRate() float64 { return b.sampleRate }

// MaxFrames returns the largest block the host may render
func (b *Base) MaxFrames() uint32 { return b.maxFrames }

// MinFrames returns the smallest block size the host announced
func (b *Base) MinFrames() uint32 { return b.minFrames }

// IsActive reports whether Activate succeeded and Deactivate has not run
func (b *Base) IsActive() bool { return b.active }

// IsProcessing reports whether StartProcessing succeeded and StopProcessing has not run
func (b *Base) IsProcessing() bool { return b.processing }

// Activate records the processing configuration.
func (b *Base) Activate(sampleRate float64, minFrames, maxFrames uint32) error {
	if b.active {
		return ErrAlreadyActive
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidActivation, sampleRate)
	}
	if maxFrames == 0 || minFrames > maxFrames {
		return fmt.Errorf("%w: frames [%d, %d]", ErrInvalidActivation, minFrames, maxFrames)
	}
	b.sampleRate = sampleRate
	b.minFrames = minFrames
	b.maxFrames = maxFrames
	b.active = true
	return nil
}

// Deactivate leaves the active state, stopping processing first.
func (b *Base) Deactivate() {
	b.processing = false
	b.active = false
}

// StartProcessing enters the processing state.
func (b *Base) StartProcessing() error {
	if !b.active {
		return ErrNotActive
	}
	b.processing = true
	return nil
}

// StopProcessing leaves the processing state.
func (b *Base) StopProcessing() {
	b.processing = false
}
