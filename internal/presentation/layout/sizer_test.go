package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSizer(t *testing.T) {
	sizer := NewSizer(120, 40)
	assert.Equal(t, 120, sizer.Width)
	assert.Equal(t, 40, sizer.Height)
}

func TestDetectSizerFallback(t *testing.T) {
	// -1 is never a terminal
	sizer := DetectSizer(-1)
	assert.Equal(t, DefaultWidth, sizer.Width)
	assert.Equal(t, DefaultHeight, sizer.Height)
}

func TestPadString(t *testing.T) {
	s := NewSizer(80, 24)

	tests := []struct {
		name      string
		text      string
		width     int
		leftAlign bool
		expected  string
	}{
		{name: "left align", text: "abc", width: 5, leftAlign: true, expected: "abc  "},
		{name: "right align", text: "abc", width: 5, expected: "  abc"},
		{name: "wide runes", text: "日本", width: 6, leftAlign: true, expected: "日本  "},
		{name: "already wide enough", text: "abcdef", width: 3, leftAlign: true, expected: "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.PadString(tt.text, tt.width, tt.leftAlign))
		})
	}
}

func TestLogRows(t *testing.T) {
	assert.Equal(t, 19, NewSizer(80, 24).LogRows(true))
	assert.Equal(t, 23, NewSizer(80, 24).LogRows(false))
	assert.Equal(t, 1, NewSizer(80, 3).LogRows(true))
}

func TestProgressBarWidth(t *testing.T) {
	s := NewSizer(80, 24)
	// 80 - 4 - (5+1) - (5+1)
	assert.Equal(t, 64, s.ProgressBarWidth("00:10", "01:00"))
	assert.Equal(t, minBarWidth, NewSizer(20, 24).ProgressBarWidth("a very long label here"))
}
