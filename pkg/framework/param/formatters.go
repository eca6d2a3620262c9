package param

import (
	"fmt"
	"strconv"
	"strings"
)

// Common parameter formatters and parsers

// FrequencyFormatter formats frequency values with Hz/kHz
func FrequencyFormatter(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.2f kHz", hz/1000)
	}
	return fmt.Sprintf("%.2f Hz", hz)
}

// FrequencyParser parses frequency strings
func FrequencyParser(str string) (float64, error) {
	str = strings.TrimSpace(str)

	// Handle kHz
	if strings.HasSuffix(str, "kHz") || strings.HasSuffix(str, "khz") {
		numStr := strings.TrimSuffix(strings.TrimSuffix(str, "kHz"), "khz")
		numStr = strings.TrimSpace(numStr)
		val, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, err
		}
		return val * 1000, nil
	}

	// Handle Hz
	str = strings.TrimSuffix(strings.TrimSuffix(str, "Hz"), "hz")
	str = strings.TrimSpace(str)
	return strconv.ParseFloat(str, 64)
}

// FractionFormatter formats a 0-1 value as a percentage
func FractionFormatter(value float64) string {
	return fmt.Sprintf("%.0f%%", value*100)
}

// FractionParser parses "50%" as 0.5. Text without a percent sign is read as a raw fraction.
func FractionParser(str string) (float64, error) {
	str = strings.TrimSpace(str)
	if strings.HasSuffix(str, "%") {
		val, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(str, "%")), 64)
		if err != nil {
			return 0, err
		}
		return val / 100, nil
	}
	return strconv.ParseFloat(str, 64)
}

// TimeFormatter formats time values with appropriate units
func TimeFormatter(ms float64) string {
	if ms < 1 {
		return fmt.Sprintf("%.2f µs", ms*1000)
	} else if ms < 1000 {
		return fmt.Sprintf("%.1f ms", ms)
	}
	return fmt.Sprintf("%.2f s", ms/1000)
}

// TimeParser parses time strings
func TimeParser(str string) (float64, error) {
	str = strings.TrimSpace(str)

	// Handle microseconds
	if strings.HasSuffix(str, "µs") || strings.HasSuffix(str, "us") {
		numStr := strings.TrimSuffix(strings.TrimSuffix(str, "µs"), "us")
		val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
		if err != nil {
			return 0, err
		}
		return val / 1000, nil // Convert to ms
	}

	// Handle seconds
	if strings.HasSuffix(str, "s") && !strings.HasSuffix(str, "ms") {
		numStr := strings.TrimSuffix(str, "s")
		val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
		if err != nil {
			return 0, err
		}
		return val * 1000, nil // Convert to ms
	}

	// Handle milliseconds (default)
	str = strings.TrimSuffix(str, "ms")
	return strconv.ParseFloat(strings.TrimSpace(str), 64)
}
