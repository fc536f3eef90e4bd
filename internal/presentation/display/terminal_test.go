package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/penwyp/go-replay-player/internal/presentation/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFrame() Frame {
	return Frame{
		State: model.PlaybackState{
			Status:       model.StatusPlaying,
			VirtualTime:  5 * time.Second,
			Speed:        2,
			SkipInactive: true,
		},
		Duration:       10 * time.Second,
		Progress:       50,
		SpeedOptions:   []float64{1, 2, 4, 8},
		ShowController: true,
		Log:            []string{"first", "second", "third"},
	}
}

func TestTimelineStrip(t *testing.T) {
	segments := []model.Segment{
		{Kind: model.SegmentActive, Start: 1000, End: 3000},
		{Kind: model.SegmentInactive, Start: 3000, End: 9000},
		{Kind: model.SegmentActive, Start: 9000, End: 11000},
	}

	strip := TimelineStrip(segments, 1000, 10*time.Second, 0, 10)
	assert.Equal(t, "──······──", strip)

	strip = TimelineStrip(segments, 1000, 10*time.Second, 50, 10)
	assert.Equal(t, "█████···──", strip)

	assert.Equal(t, "████", TimelineStrip(nil, 0, 0, 100, 4))
	assert.Equal(t, "────", TimelineStrip(nil, 0, 0, 0, 4))
}

func TestViewLayout(t *testing.T) {
	td := NewTerminalDisplay(&bytes.Buffer{}, layout.NewSizer(60, 12))
	view := td.View(sampleFrame())

	assert.Contains(t, view, "playing")
	assert.Contains(t, view, "00:05 / 00:10")
	assert.Contains(t, view, "2x")
	assert.Contains(t, view, "skip on")
	assert.Contains(t, view, "1:1x")

	lines := strings.Split(view, "\n")
	rows := layout.NewSizer(60, 12).LogRows(true)
	require.Greater(t, len(lines), rows)
	assert.Equal(t, "third", strings.TrimSpace(lines[2]))
	assert.Equal(t, "", strings.TrimSpace(lines[rows-1]))
}

func TestViewKeepsNewestLogLines(t *testing.T) {
	td := NewTerminalDisplay(&bytes.Buffer{}, layout.NewSizer(40, 6))
	frame := sampleFrame()
	frame.ShowController = false
	frame.Log = []string{"a", "b", "c", "d", "e", "f", "g"}

	lines := strings.Split(strings.TrimRight(td.View(frame), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "c", strings.TrimSpace(lines[0]))
	assert.Equal(t, "g", strings.TrimSpace(lines[4]))
}

func TestViewHelpAndPopup(t *testing.T) {
	td := NewTerminalDisplay(&bytes.Buffer{}, layout.NewSizer(60, 20))
	frame := sampleFrame()
	frame.Controls = model.ControlState{ShowHelp: true, PopupHidden: true, DisablePrevious: true}

	view := td.View(frame)
	assert.Contains(t, view, "Key bindings")
	assert.Contains(t, view, "play / pause")
	assert.NotContains(t, view, "first")
	assert.NotContains(t, view, "1:1x")
	assert.Contains(t, view, "prev disabled")
}

func TestRenderWritesFrame(t *testing.T) {
	var buf bytes.Buffer
	td := NewTerminalDisplay(&buf, layout.NewSizer(60, 12))

	td.EnterAlternateScreen()
	td.EnterAlternateScreen()
	td.Render(sampleFrame())
	td.ExitAlternateScreen()

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\033[?1049h"))
	assert.Equal(t, 1, strings.Count(out, "\033[?1049l"))
	assert.Contains(t, out, "\r\n")
	assert.Contains(t, out, "00:05 / 00:10")
}
