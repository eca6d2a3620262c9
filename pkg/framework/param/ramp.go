package param

import "math"

// DefaultRampMs is the ramp duration used when none is configured.
const DefaultRampMs = 100.0

// RampedValue is a linear crossfade from the previous value to a new target over
// a fixed duration. It owns a scratch buffer sized to the largest render block so
// FillBuffer never allocates.
type RampedValue struct {
	target   float32
	previous float32
	current  float32

	progress float64
	step     float64
	steps    int // samples taken since the last Retarget
	length   int // ceil(1/step)

	durationMs float64
	smoothing  bool

	buffer []float32
}

// NewRampedValue creates an initialized ramp.
func NewRampedValue(defaultValue float32, maxBlockSize int) *RampedValue {
	r := &RampedValue{}
	r.Init(defaultValue, maxBlockSize)
	return r
}

// Init allocates the scratch buffer and snaps the ramp to defaultValue.
func (r *RampedValue) Init(defaultValue float32, maxBlockSize int) {
	if maxBlockSize < 1 {
		maxBlockSize = 1
	}
	if r.durationMs <= 0 {
		r.durationMs = DefaultRampMs
	}
	r.buffer = make([]float32, maxBlockSize)
	r.Reset(defaultValue)
}

// SetDuration changes the ramp duration for subsequent retargets.
func (r *RampedValue) SetDuration(ms float64) {
	r.durationMs = ms
}

// Reset jumps to value without ramping.
func (r *RampedValue) Reset(value float32) {
	r.target = value
	r.previous = value
	r.current = value
	r.progress = 1
	r.steps = 0
	r.length = 0
	r.smoothing = false
}

// Retarget starts a new ramp from the current value towards value.
func (r *RampedValue) Retarget(value float32, sampleRate float64) {
	r.previous = r.current
	r.target = value
	r.progress = 0
	r.steps = 0

	rampSamples := r.durationMs * 0.001 * sampleRate
	if rampSamples <= 0 || math.IsNaN(rampSamples) || math.IsInf(rampSamples, 0) {
		r.Reset(value)
		return
	}
	r.step = 1 / rampSamples
	r.length = int(math.Ceil(1 / r.step))
	r.smoothing = true
}

// Next advances the ramp by one sample and returns the new value.
func (r *RampedValue) Next() float32 {
	if !r.smoothing {
		return r.current
	}
	if r.current == r.target {
		r.finish()
		return r.current
	}

	r.steps++
	if r.steps >= r.length {
		r.finish()
		return r.current
	}

	r.progress = float64(r.steps) * r.step
	from := float64(r.previous)
	r.current = float32(from + r.progress*(float64(r.target)-from))
	return r.current
}

func (r *RampedValue) finish() {
	r.progress = 1
	r.current = r.target
	r.smoothing = false
}

// FillBuffer writes n ramp values into the scratch buffer and returns that
// slice. n is clamped to the buffer size.
func (r *RampedValue) FillBuffer(n int) []float32 {
	if n > len(r.buffer) {
		n = len(r.buffer)
	}
	if n < 0 {
		n = 0
	}
	out := r.buffer[:n]

	if !r.smoothing || r.current == r.target {
		r.finish()
		for i := range out {
			out[i] = r.current
		}
		return out
	}

	for i := range out {
		out[i] = r.Next()
	}
	return out
}

// Current returns the latest smoothed value.
func (r *RampedValue) Current() float32 { return r.current }

// Target returns the value the ramp is heading to.
func (r *RampedValue) Target() float32 { return r.target }

// IsSmoothing reports whether the ramp has not yet reached its target.
func (r *RampedValue) IsSmoothing() bool { return r.smoothing }

// Step returns the per-sample progress increment of the active ramp.
func (r *RampedValue) Step() float64 { return r.step }

// RampLength returns the number of samples the active ramp takes, ceil(1/step).
func (r *RampedValue) RampLength() int { return r.length }
