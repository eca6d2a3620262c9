package filter

import "math"

// Onepole is a one-pole low-pass used for tone shaping:
// y[n] = b0*x[n] + a1*y[n-1], b0 = sin(pi*fc/fs), a1 = 1-b0.
type Onepole struct {
	b0, a1 float32

	// State variables (per-channel)
	y1 []float32
}

// NewOnepole creates a pass-through filter for the specified number of channels
func NewOnepole(channels int) *Onepole {
	return &Onepole{
		b0: 1,
		a1: 0,
		y1: make([]float32, channels),
	}
}

// SetCutoff recomputes the coefficients. fc is clamped to [0, fs/2].
func (f *Onepole) SetCutoff(fc, fs float64) {
	if fs <= 0 {
		return
	}
	if fc < 0 {
		fc = 0
	} else if fc > fs/2 {
		fc = fs / 2
	}
	b0 := math.Sin(math.Pi * fc / fs)
	f.b0 = float32(b0)
	f.a1 = float32(1 - b0)
}

// Coefficients returns b0 and a1.
func (f *Onepole) Coefficients() (b0, a1 float32) {
	return f.b0, f.a1
}

// Tick filters one sample on a channel.
func (f *Onepole) Tick(x float32, channel int) float32 {
	y := f.b0*x + f.a1*f.y1[channel]
	f.y1[channel] = y
	return y
}

// Reset clears the filter state
func (f *Onepole) Reset() {
	for i := range f.y1 {
		f.y1[i] = 0
	}
}
