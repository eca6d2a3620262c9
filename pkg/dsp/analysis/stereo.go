// Package analysis measures rendered audio.
package analysis

import (
	"fmt"
	"math"
	"sync"
)

// StereoMeter accumulates the stereo relationship of a signal: the
// correlation between channels and the side/mid power ratio.
type StereoMeter struct {
	mu      sync.Mutex
	samples int
	sumL2   float64
	sumR2   float64
	sumLR   float64
	mid     float64
	side    float64
}

// NewStereoMeter creates an empty meter.
func NewStereoMeter() *StereoMeter {
	return &StereoMeter{}
}

// Process adds one block. Extra samples in the longer channel are ignored.
func (m *StereoMeter) Process(left, right []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := min(len(left), len(right))
	for i := 0; i < n; i++ {
		l, r := float64(left[i]), float64(right[i])
		m.sumL2 += l * l
		m.sumR2 += r * r
		m.sumLR += l * r

		mid := (l + r) * 0.5
		side := (l - r) * 0.5
		m.mid += mid * mid
		m.side += side * side
	}
	m.samples += n
}

// ProcessInterleaved adds a block of L R L R ... frames.
func (m *StereoMeter) ProcessInterleaved(frames []float32) {
	n := len(frames) / 2
	left, right := make([]float32, n), make([]float32, n)
	for i := 0; i < n; i++ {
		left[i], right[i] = frames[2*i], frames[2*i+1]
	}
	m.Process(left, right)
}

// Correlation returns the zero-lag correlation coefficient in [-1, 1]:
// 1 for identical channels, 0 for unrelated ones, -1 for inverted ones.
// A silent channel reads as 0.
func (m *StereoMeter) Correlation() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	den := math.Sqrt(m.sumL2 * m.sumR2)
	if den == 0 {
		return 0
	}
	return max(-1, min(1, m.sumLR/den))
}

// Width returns sqrt(side/mid): 0 for mono, 1 when side and mid carry
// equal power. Fully out-of-phase channels read as +Inf.
func (m *StereoMeter) Width() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.side == 0 {
		return 0
	}
	if m.mid == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(m.side / m.mid)
}

// Phase classifies the correlation.
func (m *StereoMeter) Phase() PhaseStatus {
	c := m.Correlation()
	switch {
	case c > 0.999:
		return PhaseMono
	case c >= 0.5:
		return PhaseGood
	case c >= 0:
		return PhaseWide
	case c >= -0.5:
		return PhaseProblematic
	default:
		return PhaseOutOfPhase
	}
}

// Samples returns the number of frames processed.
func (m *StereoMeter) Samples() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.samples
}

// Reset clears the accumulated sums.
func (m *StereoMeter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = 0
	m.sumL2, m.sumR2, m.sumLR = 0, 0, 0
	m.mid, m.side = 0, 0
}

// String returns a one-line summary.
func (m *StereoMeter) String() string {
	return fmt.Sprintf("correlation %+.3f width %.3f (%s)", m.Correlation(), m.Width(), m.Phase())
}

// PhaseStatus is a coarse reading of the stereo correlation.
type PhaseStatus int

const (
	PhaseMono PhaseStatus = iota
	PhaseGood
	PhaseWide
	PhaseProblematic
	PhaseOutOfPhase
)

// String returns the string representation of the status.
func (ps PhaseStatus) String() string {
	switch ps {
	case PhaseMono:
		return "mono"
	case PhaseGood:
		return "good"
	case PhaseWide:
		return "wide"
	case PhaseProblematic:
		return "problematic"
	case PhaseOutOfPhase:
		return "out of phase"
	default:
		return "unknown"
	}
}
