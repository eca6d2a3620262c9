package delay

import "math"

// Echo is a stereo feedback delay line. Both channels share one write cursor
// that always points at the next slot to be overwritten.
type Echo struct {
	bufferL  []float32
	bufferR  []float32
	size     int
	writePos int
}

// EchoSize returns the buffer length needed for delays up to maxDelayMs
// at sampleRate, with two guard samples for interpolation.
func EchoSize(maxDelayMs, sampleRate float64) int {
	n := int(math.Ceil(maxDelayMs*sampleRate/1000)) + 2
	if n < 4 {
		n = 4
	}
	return n
}

// NewEcho creates an echo able to delay by up to maxDelayMs.
func NewEcho(maxDelayMs, sampleRate float64) *Echo {
	return NewEchoSize(EchoSize(maxDelayMs, sampleRate))
}

// NewEchoSize creates an echo with an explicit buffer length.
func NewEchoSize(size int) *Echo {
	if size < 4 {
		size = 4
	}
	return &Echo{
		bufferL: make([]float32, size),
		bufferR: make([]float32, size),
		size:    size,
	}
}

// Size returns the buffer length in samples.
func (e *Echo) Size() int { return e.size }

// MaxDelay returns the longest delay Read honours, in samples.
func (e *Echo) MaxDelay() float64 { return float64(e.size - 2) }

// Reset clears the delay buffer
func (e *Echo) Reset() {
	for i := range e.bufferL {
		e.bufferL[i] = 0
		e.bufferR[i] = 0
	}
	e.writePos = 0
}

// Read returns the samples written delayL and delayR samples ago, linearly
// interpolated. Delays are clamped to [1, MaxDelay].
func (e *Echo) Read(delayL, delayR float64) (float32, float32) {
	return e.read(e.bufferL, delayL), e.read(e.bufferR, delayR)
}

func (e *Echo) read(buf []float32, delay float64) float32 {
	if delay < 1 || math.IsNaN(delay) {
		delay = 1
	} else if limit := e.MaxDelay(); delay > limit {
		delay = limit
	}

	readPos := float64(e.writePos) - delay
	if readPos < 0 {
		readPos += float64(e.size)
	}

	i0 := int(readPos)
	frac := float32(readPos - float64(i0))
	if i0 >= e.size {
		i0 -= e.size
	}
	i1 := i0 + 1
	if i1 >= e.size {
		i1 = 0
	}

	return buf[i0]*(1-frac) + buf[i1]*frac
}

// Write stores a raw sample pair and advances the cursor.
func (e *Echo) Write(l, r float32) {
	e.bufferL[e.writePos] = l
	e.bufferR[e.writePos] = r
	e.writePos++
	if e.writePos >= e.size {
		e.writePos = 0
	}
}

// Feed stores in + feedback*(in + wet) for each channel and advances the cursor.
// wet is the delayed signal read for the same sample, so the first repeat of
// an impulse is scaled by 1+feedback and every later one by another feedback.
func (e *Echo) Feed(inL, inR, wetL, wetR, feedback float32) {
	e.Write(inL+feedback*(inL+wetL), inR+feedback*(inR+wetR))
}
