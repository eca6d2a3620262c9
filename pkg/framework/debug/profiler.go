package debug

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler provides timing statistics for named sections.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
	maxSamples   int
}

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	Name  string
	Count uint64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration

	samples     []time.Duration
	sampleIndex int
}

// NewProfiler creates a new profiler keeping the last maxSamples timings per section.
func NewProfiler(maxSamples int) *Profiler {
	if maxSamples < 1 {
		maxSamples = 1
	}
	p := &Profiler{
		measurements: make(map[string]*Measurement),
		maxSamples:   maxSamples,
	}
	p.enabled.Store(true)
	return p
}

// SetEnabled enables or disables profiling.
func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// IsEnabled returns whether profiling is enabled.
func (p *Profiler) IsEnabled() bool {
	return p.enabled.Load()
}

// Start begins timing a named section.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return func() {} // No-op
	}

	start := time.Now()

	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record stores a timing measurement.
func (p *Profiler) Record(name string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, exists := p.measurements[name]
	if !exists {
		m = &Measurement{
			Name:    name,
			Min:     elapsed,
			Max:     elapsed,
			samples: make([]time.Duration, 0, p.maxSamples),
		}
		p.measurements[name] = m
	}

	m.Count++
	m.Total += elapsed
	m.Last = elapsed
	m.Min = min(m.Min, elapsed)
	m.Max = max(m.Max, elapsed)

	if len(m.samples) < p.maxSamples {
		m.samples = append(m.samples, elapsed)
	} else {
		m.samples[m.sampleIndex] = elapsed
	}
	m.sampleIndex = (m.sampleIndex + 1) % p.maxSamples
}

// Measurement returns a copy of the measurement for a named section.
func (p *Profiler) Measurement(name string) (Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, exists := p.measurements[name]
	if !exists {
		return Measurement{}, false
	}
	cp := *m
	cp.samples = slices.Clone(m.samples)
	return cp, true
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.measurements = make(map[string]*Measurement)
}

// Report generates a performance report, sections sorted by name.
func (p *Profiler) Report() string {
	p.mu.RLock()
	names := make([]string, 0, len(p.measurements))
	for name := range p.measurements {
		names = append(names, name)
	}
	p.mu.RUnlock()

	if len(names) == 0 {
		return "No measurements recorded"
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Performance Report:\n")
	sb.WriteString("==================\n\n")

	for _, name := range names {
		m, ok := p.Measurement(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%s:\n", name)
		fmt.Fprintf(&sb, "  Count:   %d\n", m.Count)
		fmt.Fprintf(&sb, "  Total:   %v\n", m.Total)
		fmt.Fprintf(&sb, "  Average: %v\n", m.Average())
		fmt.Fprintf(&sb, "  Min:     %v\n", m.Min)
		fmt.Fprintf(&sb, "  Max:     %v\n", m.Max)
		fmt.Fprintf(&sb, "  p99:     %v\n", m.Percentile(99))
		sb.WriteString("\n")
	}

	return sb.String()
}

// Average returns the average time for this measurement.
func (m Measurement) Average() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.Total / time.Duration(m.Count)
}

// Percentile returns the given percentile (0-100) of the retained samples.
func (m Measurement) Percentile(pct float64) time.Duration {
	if len(m.samples) == 0 {
		return 0
	}
	sorted := slices.Clone(m.samples)
	slices.Sort(sorted)

	pct = max(0, min(100, pct))
	index := int(float64(len(sorted)-1) * pct / 100.0)
	return sorted[index]
}

// RenderSection is the measurement name RenderProfiler records blocks under.
const RenderSection = "render"

// RenderProfiler tracks render time against the real-time budget of each block.
type RenderProfiler struct {
	*Profiler
	sampleRate float64

	frames   atomic.Uint64
	busyNs   atomic.Int64
	overruns atomic.Uint64
}

// NewRenderProfiler creates a profiler for blocks rendered at sampleRate.
func NewRenderProfiler(sampleRate float64) *RenderProfiler {
	return &RenderProfiler{
		Profiler:   NewProfiler(4096),
		sampleRate: sampleRate,
	}
}

// Block starts timing a render call of frames samples. Call the returned
// function when the render call returns.
func (r *RenderProfiler) Block(frames uint32) func() {
	if !r.IsEnabled() {
		return func() {}
	}
	start := time.Now()
	return func() {
		r.RecordBlock(frames, time.Since(start))
	}
}

// RecordBlock accounts for one render call.
func (r *RenderProfiler) RecordBlock(frames uint32, elapsed time.Duration) {
	r.Record(RenderSection, elapsed)
	r.frames.Add(uint64(frames))
	r.busyNs.Add(int64(elapsed))
	if elapsed > r.Budget(frames) {
		r.overruns.Add(1)
	}
}

// Budget returns the wall time frames samples last at the sample rate.
func (r *RenderProfiler) Budget(frames uint32) time.Duration {
	if r.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / r.sampleRate * float64(time.Second))
}

// Load returns render time as a percentage of the audio time rendered.
func (r *RenderProfiler) Load() float64 {
	if r.sampleRate <= 0 {
		return 0
	}
	audioNs := float64(r.frames.Load()) / r.sampleRate * float64(time.Second)
	if audioNs <= 0 {
		return 0
	}
	return float64(r.busyNs.Load()) / audioNs * 100
}

// Overruns returns the number of blocks that took longer than their budget.
func (r *RenderProfiler) Overruns() uint64 {
	return r.overruns.Load()
}

// AudioReport generates a render-specific performance report.
func (r *RenderProfiler) AudioReport() string {
	var sb strings.Builder
	sb.WriteString(r.Report())
	sb.WriteString("Render Stats:\n")
	fmt.Fprintf(&sb, "  Sample Rate: %.0f Hz\n", r.sampleRate)
	fmt.Fprintf(&sb, "  Frames:      %d\n", r.frames.Load())
	fmt.Fprintf(&sb, "  Load:        %.2f%%\n", r.Load())
	fmt.Fprintf(&sb, "  Overruns:    %d\n", r.Overruns())
	return sb.String()
}
