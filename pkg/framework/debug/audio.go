package debug

import (
	"fmt"
	"math"
)

// AudioAnalyzer provides utilities for analyzing audio buffers.
type AudioAnalyzer struct {
	clippingThreshold float32
	dcThreshold       float32
	silenceThreshold  float32
}

// NewAudioAnalyzer creates a new audio analyzer with default settings.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		clippingThreshold: 0.99,
		dcThreshold:       0.01,
		silenceThreshold:  0.0001,
	}
}

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Samples        int
	Peak           float32
	RMS            float32
	DC             float32
	Clipping       bool
	ClippedSamples int
	Silent         bool
	NaNCount       int
	InfCount       int
}

// Finite reports whether every sample was a finite number.
func (r AnalysisResult) Finite() bool {
	return r.NaNCount == 0 && r.InfCount == 0
}

// String returns a one-line summary.
func (r AnalysisResult) String() string {
	s := fmt.Sprintf("peak %.4f (%.1f dBFS) rms %.4f dc %+.5f", r.Peak, toDB(r.Peak), r.RMS, r.DC)
	if r.Clipping {
		s += fmt.Sprintf(" clipped %d", r.ClippedSamples)
	}
	if !r.Finite() {
		s += fmt.Sprintf(" nan %d inf %d", r.NaNCount, r.InfCount)
	}
	if r.Silent {
		s += " silent"
	}
	return s
}

func toDB(v float32) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(float64(v))
}

// Analyze performs comprehensive analysis on an audio buffer.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	result := AnalysisResult{Samples: len(buffer)}

	if len(buffer) == 0 {
		return result
	}

	var sum, sumSquares float64
	finite := 0

	for _, sample := range buffer {
		v := float64(sample)
		if math.IsNaN(v) {
			result.NaNCount++
			continue
		}
		if math.IsInf(v, 0) {
			result.InfCount++
			continue
		}
		finite++

		absSample := sample
		if absSample < 0 {
			absSample = -absSample
		}

		if absSample > result.Peak {
			result.Peak = absSample
		}

		if absSample >= a.clippingThreshold {
			result.Clipping = true
			result.ClippedSamples++
		}

		sum += v
		sumSquares += v * v
	}

	if finite > 0 {
		result.RMS = float32(math.Sqrt(sumSquares / float64(finite)))
		result.DC = float32(sum / float64(finite))
	}

	if result.RMS < a.silenceThreshold {
		result.Silent = true
	}

	return result
}

// CheckBuffer performs basic sanity checks on an audio buffer.
func (a *AudioAnalyzer) CheckBuffer(buffer []float32, name string) []string {
	var issues []string

	result := a.Analyze(buffer)

	if result.NaNCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: Contains %d NaN values", name, result.NaNCount))
	}

	if result.InfCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: Contains %d infinite values", name, result.InfCount))
	}

	if result.Clipping {
		issues = append(issues, fmt.Sprintf("%s: Clipping detected (%d samples)", name, result.ClippedSamples))
	}

	if math.Abs(float64(result.DC)) > float64(a.dcThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, result.DC))
	}

	return issues
}

// LogBufferStats logs statistics about an audio buffer.
func LogBufferStats(logger *Logger, buffer []float32, name string) {
	analyzer := NewAudioAnalyzer()
	result := analyzer.Analyze(buffer)

	logger.Info("%s: %d samples, %s", name, len(buffer), result)
	for _, issue := range analyzer.CheckBuffer(buffer, name) {
		logger.Warn("%s", issue)
	}
}
