package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-replay-player/internal/util"
	"golang.org/x/term"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 24

	// controllerRows is the height of the status bar plus its border
	controllerRows = 4
	minBarWidth    = 10
)

// Sizer splits the terminal between the event log and the controller bar
type Sizer struct {
	Width  int
	Height int
}

func NewSizer(width, height int) *Sizer {
	return &Sizer{Width: width, Height: height}
}

// DetectSizer measures the terminal behind fd, falling back to 80x24.
func DetectSizer(fd int) *Sizer {
	width, height, err := term.GetSize(fd)
	if err != nil || width <= 0 || height <= 0 {
		util.LogDebugf("Terminal size unavailable (%v), using %dx%d", err, DefaultWidth, DefaultHeight)
		return NewSizer(DefaultWidth, DefaultHeight)
	}
	return NewSizer(width, height)
}

// PadString pads a string to a specific display width, handling wide runes
func (s *Sizer) PadString(text string, width int, leftAlign bool) string {
	actualWidth := runewidth.StringWidth(text)
	if actualWidth >= width {
		return text
	}

	padding := strings.Repeat(" ", width-actualWidth)
	if leftAlign {
		return text + padding
	}
	return padding + text
}

// LogRows is the number of event lines that fit above the controller.
func (s *Sizer) LogRows(showController bool) int {
	rows := s.Height - 1
	if showController {
		rows -= controllerRows
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

// ProgressBarWidth is what remains of a row once labels take their share.
func (s *Sizer) ProgressBarWidth(labels ...string) int {
	used := 4 // border and padding
	for _, l := range labels {
		used += runewidth.StringWidth(l) + 1
	}
	w := s.Width - used
	if w < minBarWidth {
		w = minBarWidth
	}
	return w
}
