package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driving"
)

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "sub-second", duration: 120 * time.Millisecond, expected: "0.12s"},
		{name: "seconds", duration: 2500 * time.Millisecond, expected: "2.50s"},
		{name: "zero", duration: 0, expected: "0.00s"},
		{name: "minutes", duration: 90 * time.Second, expected: "90.00s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatSeconds(tt.duration))
		})
	}
}

func TestFormatMetric(t *testing.T) {
	value := 0.512345

	assert.Equal(t, "n/a", formatMetric(nil))
	assert.Equal(t, "0.512", formatMetric(&value))
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{name: "shorter than limit", input: "短い", limit: 10, expected: "短い"},
		{name: "exactly at limit", input: "ちょうど", limit: 4, expected: "ちょうど"},
		{name: "truncated", input: "就業時間を教えてください", limit: 4, expected: "就業時間…"},
		{name: "ascii", input: "abcdef", limit: 3, expected: "abc…"},
		{name: "empty", input: "", limit: 5, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateRunes(tt.input, tt.limit))
		})
	}
}

func TestStatusGlyph(t *testing.T) {
	assert.Contains(t, statusGlyph(domain.FileSucceeded), "✓")
	assert.Contains(t, statusGlyph(domain.FileSkipped), "-")
	assert.Contains(t, statusGlyph(domain.FileFailed), "✗")
}

func TestHealthGlyph(t *testing.T) {
	assert.Contains(t, healthGlyph(driving.DependencyStatus{Configured: true}), "✓")
	assert.Contains(t, healthGlyph(driving.DependencyStatus{Configured: false}), "·")
	assert.Contains(t, healthGlyph(driving.DependencyStatus{Configured: true, Err: assert.AnError}), "✗")
}

func TestRenderAnswerPanel(t *testing.T) {
	panel := renderAnswerPanel("就業時間を教えてください。", "9時から18時です。")

	assert.Contains(t, panel, "就業時間を教えてください。")
	assert.Contains(t, panel, "9時から18時です。")
}
