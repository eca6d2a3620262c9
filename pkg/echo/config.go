package echo

import (
	"errors"
	"fmt"
	"math"

	"github.com/justyntemme/goecho/pkg/framework/debug"
	"github.com/justyntemme/goecho/pkg/framework/event"
	"github.com/justyntemme/goecho/pkg/framework/param"
)

// ErrInvalidConfig is returned by Validate and New for unusable settings.
var ErrInvalidConfig = errors.New("echo: invalid config")

// Config controls how a Session is built
type Config struct {
	// FIFOCapacity is the number of control edits that can be in flight
	// between two render calls. Rounded up to a power of two.
	FIFOCapacity int

	// RampMs is the smoothing duration of every parameter.
	RampMs float64

	// ModDepthMs is the delay offset at full Mod Amount.
	ModDepthMs float64

	// MaxDelayMs sizes the delay line. It must cover the Time parameter range.
	MaxDelayMs float64

	// Logger receives control-thread diagnostics. Nil uses the default logger.
	Logger *debug.Logger
}

// DefaultConfig returns the settings the plugin factory uses
func DefaultConfig() Config {
	return Config{
		FIFOCapacity: event.DefaultCapacity,
		RampMs:       param.DefaultRampMs,
		ModDepthMs:   5,
		MaxDelayMs:   MaxTimeMs,
	}
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.FIFOCapacity < 2 || c.FIFOCapacity > 1<<16 {
		return fmt.Errorf("%w: fifo capacity %d not in [2, 65536]", ErrInvalidConfig, c.FIFOCapacity)
	}
	if !(c.RampMs > 0) || math.IsInf(c.RampMs, 0) {
		return fmt.Errorf("%w: ramp %v ms", ErrInvalidConfig, c.RampMs)
	}
	if !(c.ModDepthMs >= 0) || c.ModDepthMs > 100 {
		return fmt.Errorf("%w: mod depth %v ms not in [0, 100]", ErrInvalidConfig, c.ModDepthMs)
	}
	if !(c.MaxDelayMs >= MaxTimeMs) || c.MaxDelayMs > 60000 {
		return fmt.Errorf("%w: max delay %v ms not in [%v, 60000]", ErrInvalidConfig, c.MaxDelayMs, MaxTimeMs)
	}
	return nil
}
