package debug

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestAudioAnalyzer(t *testing.T) {
	analyzer := NewAudioAnalyzer()

	t.Run("BasicAnalysis", func(t *testing.T) {
		buffer := []float32{0.5, -0.5, 0.5, -0.5}
		result := analyzer.Analyze(buffer)

		if result.Peak != 0.5 {
			t.Errorf("Expected peak 0.5, got %f", result.Peak)
		}
		if math.Abs(float64(result.RMS)-0.5) > 1e-6 {
			t.Errorf("Expected RMS 0.5, got %f", result.RMS)
		}
		if result.DC != 0 {
			t.Errorf("Expected zero DC, got %f", result.DC)
		}
		if result.Clipping || result.Silent || !result.Finite() {
			t.Errorf("Unexpected flags: %+v", result)
		}
	})

	t.Run("Clipping", func(t *testing.T) {
		result := analyzer.Analyze([]float32{1.0, -1.2, 0.1})
		if !result.Clipping || result.ClippedSamples != 2 {
			t.Errorf("Expected 2 clipped samples, got %+v", result)
		}
	})

	t.Run("Silence", func(t *testing.T) {
		result := analyzer.Analyze(make([]float32, 64))
		if !result.Silent {
			t.Error("Zero buffer should be silent")
		}
		if !strings.Contains(result.String(), "silent") {
			t.Errorf("Summary should mention silence: %s", result)
		}
	})

	t.Run("NonFinite", func(t *testing.T) {
		nan := float32(math.NaN())
		inf := float32(math.Inf(1))
		result := analyzer.Analyze([]float32{nan, inf, 0.25})

		if result.NaNCount != 1 || result.InfCount != 1 {
			t.Errorf("Expected 1 NaN and 1 Inf, got %+v", result)
		}
		if result.Peak != 0.25 {
			t.Errorf("Non-finite samples should not affect peak, got %f", result.Peak)
		}
		if result.Finite() {
			t.Error("Finite() should be false")
		}
	})

	t.Run("CheckBuffer", func(t *testing.T) {
		issues := analyzer.CheckBuffer([]float32{0.5, 0.5, 1.5}, "out")
		if len(issues) != 2 {
			t.Errorf("Expected clipping and DC issues, got %v", issues)
		}

		if issues := analyzer.CheckBuffer([]float32{0.1, -0.1}, "ok"); len(issues) != 0 {
			t.Errorf("Expected no issues, got %v", issues)
		}
	})
}

func TestLogBufferStats(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "", FlagLevel)

	LogBufferStats(logger, []float32{2, 2}, "wet")

	output := buf.String()
	if !strings.Contains(output, "[INFO] wet: 2 samples") {
		t.Errorf("Missing stats line: %q", output)
	}
	if !strings.Contains(output, "[WARN] wet: Clipping") {
		t.Errorf("Missing clipping warning: %q", output)
	}
}
