package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/penwyp/go-replay-player/internal/presentation/interaction"
	"github.com/penwyp/go-replay-player/internal/presentation/layout"
	"github.com/penwyp/go-replay-player/internal/util"
)

// Frame is everything one redraw needs.
type Frame struct {
	State          model.PlaybackState
	Duration       time.Duration
	Progress       float64
	Origin         int64
	Segments       []model.Segment
	Controls       model.ControlState
	SpeedOptions   []float64
	ShowController bool
	Log            []string
	Message        string
}

var (
	barStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	statusStyles = map[model.PlayerStatus]lipgloss.Style{
		model.StatusPlaying:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		model.StatusPaused:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		model.StatusFinished: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245")),
		model.StatusIdle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

var statusIcons = map[model.PlayerStatus]string{
	model.StatusIdle:     "■",
	model.StatusPlaying:  "▶",
	model.StatusPaused:   "⏸",
	model.StatusFinished: "■",
}

type TerminalDisplay struct {
	out               io.Writer
	sizer             *layout.Sizer
	inAlternateScreen bool
}

func NewTerminalDisplay(out io.Writer, sizer *layout.Sizer) *TerminalDisplay {
	return &TerminalDisplay{out: out, sizer: sizer}
}

// SetSizer switches to new terminal dimensions after a resize.
func (td *TerminalDisplay) SetSizer(sizer *layout.Sizer) {
	td.sizer = sizer
}

// EnterAlternateScreen switches to the alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, "\033[?1049h", util.ClearScreen, util.MoveCursorHome, util.HideCursor)
	td.inAlternateScreen = true
}

// ExitAlternateScreen returns to the normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen, util.MoveCursorHome, util.ShowCursor, "\033[?1049l")
	td.inAlternateScreen = false
}

// Render redraws the whole screen from the top left corner.
func (td *TerminalDisplay) Render(frame Frame) {
	view := strings.ReplaceAll(td.View(frame), "\n", util.ClearLineRight+"\r\n")
	fmt.Fprint(td.out, util.MoveCursorHome, view, util.ClearToEnd)
}

// View lays out the event log above the controller bar.
func (td *TerminalDisplay) View(frame Frame) string {
	width := td.sizer.Width
	rows := td.sizer.LogRows(frame.ShowController)

	var body []string
	if frame.Controls.ShowHelp {
		body = helpLines()
	} else {
		body = frame.Log
	}
	if len(body) > rows {
		body = body[len(body)-rows:]
	}

	var b strings.Builder
	for i := 0; i < rows; i++ {
		line := ""
		if i < len(body) {
			line = body[i]
		}
		b.WriteString(util.PadRight(line, width))
		b.WriteString("\n")
	}

	if frame.ShowController {
		b.WriteString(td.controllerBar(frame))
		b.WriteString("\n")
	}
	if frame.Message != "" {
		b.WriteString(dimStyle.Render(util.PadRight(frame.Message, width)))
	}
	return b.String()
}

func (td *TerminalDisplay) controllerBar(frame Frame) string {
	st := frame.State
	style, ok := statusStyles[st.Status]
	if !ok {
		style = dimStyle
	}

	clock := fmt.Sprintf("%s / %s", util.FormatOffset(st.VirtualTime), util.FormatOffset(frame.Duration))
	skip := "skip off"
	if st.SkipInactive {
		skip = "skip on"
	}

	parts := []string{
		style.Render(statusIcons[st.Status] + " " + string(st.Status)),
		clock,
		util.FormatSpeed(st.Speed),
		dimStyle.Render(skip),
	}
	if frame.Controls.DisablePrevious {
		parts = append(parts, dimStyle.Render("prev disabled"))
	}
	if frame.Controls.DisableNext {
		parts = append(parts, dimStyle.Render("next disabled"))
	}
	info := strings.Join(parts, "  ")

	barWidth := td.sizer.ProgressBarWidth() - 2
	strip := TimelineStrip(frame.Segments, frame.Origin, frame.Duration, frame.Progress, barWidth)
	lines := []string{info, strip}

	if !frame.Controls.PopupHidden && len(frame.SpeedOptions) > 0 {
		lines = append(lines, speedPopup(frame.SpeedOptions, st.Speed))
	}

	return barStyle.Width(td.sizer.Width - 2).Render(strings.Join(lines, "\n"))
}

func speedPopup(options []float64, current float64) string {
	items := make([]string, 0, len(options))
	for i, opt := range options {
		label := fmt.Sprintf("%d:%s", i+1, util.FormatSpeed(opt))
		if opt == current {
			label = selectedStyle.Render(label)
		}
		items = append(items, label)
	}
	return dimStyle.Render("speed ") + strings.Join(items, " ")
}

func helpLines() []string {
	lines := []string{titleStyle.Render("Key bindings"), ""}
	for _, bind := range interaction.Bindings {
		lines = append(lines, fmt.Sprintf("  %s  %s", util.PadRight(bind.Keys, 8), bind.Description))
	}
	return lines
}

// TimelineStrip draws the recording as a bar of width cells. Played cells are
// solid, unplayed inactive stretches are dotted.
func TimelineStrip(segments []model.Segment, origin int64, total time.Duration, progress float64, width int) string {
	if width < 1 {
		width = 1
	}
	played := int(progress / 100 * float64(width))
	if played > width {
		played = width
	}

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < played {
			b.WriteString("█")
			continue
		}
		at := origin
		if total > 0 {
			at += model.OffsetToMillis(time.Duration(float64(total) * (float64(i) + 0.5) / float64(width)))
		}
		if inactiveAt(segments, at) {
			b.WriteString("·")
		} else {
			b.WriteString("─")
		}
	}
	return b.String()
}

func inactiveAt(segments []model.Segment, ts int64) bool {
	for _, seg := range segments {
		if seg.Kind == model.SegmentInactive && seg.Contains(ts) {
			return true
		}
	}
	return false
}
