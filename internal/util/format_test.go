package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{name: "zero", input: 0, expected: "0"},
		{name: "hundreds", input: 999, expected: "999"},
		{name: "exactly 1000", input: 1000, expected: "1.0K"},
		{name: "thousands", input: 1500, expected: "1.5K"},
		{name: "millions", input: 2500000, expected: "2.5M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.input))
		})
	}
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Duration
		expected string
	}{
		{name: "zero", input: 0, expected: "00:00"},
		{name: "negative", input: -time.Second, expected: "00:00"},
		{name: "sub second", input: 999 * time.Millisecond, expected: "00:00"},
		{name: "minutes", input: 2*time.Minute + 5*time.Second, expected: "02:05"},
		{name: "hours", input: time.Hour + 2*time.Minute + 3*time.Second, expected: "01:02:03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatOffset(tt.input))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "5m", FormatDuration(5*time.Minute+10*time.Second))
	assert.Equal(t, "1h 5m", FormatDuration(65*time.Minute))
}

func TestFormatSpeed(t *testing.T) {
	assert.Equal(t, "1x", FormatSpeed(1))
	assert.Equal(t, "0.5x", FormatSpeed(0.5))
	assert.Equal(t, "8x", FormatSpeed(8))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", PadRight("ab", 4))
	assert.Equal(t, "abc", PadRight("abcdef", 3))
	assert.Equal(t, "世 ", PadRight("世", 3))
}

func TestCreateProgressBar(t *testing.T) {
	assert.Equal(t, "[░░░░]", CreateProgressBar(0, 6))
	assert.Equal(t, "[██░░]", CreateProgressBar(50, 6))
	assert.Equal(t, "[████]", CreateProgressBar(150, 6))
	assert.Equal(t, "[░░░░]", CreateProgressBar(-10, 6))
}
