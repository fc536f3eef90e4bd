package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-replay-player/internal/util"
)

type TableFormatter struct {
	headers []string
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers: []string{"#", "Kind", "Start", "End", "Duration", "Events"},
	}
}

func (f *TableFormatter) Format(w io.Writer, report Report) error {
	tw := &tableWriter{w: w}

	tw.printf("Recording:  %s\n", report.Source)
	tw.printf("Events:     %s\n", util.FormatNumber(report.EventCount))
	if report.EventCount == 0 {
		return tw.err
	}
	tw.printf("Duration:   %s (%d → %d)\n", util.FormatOffset(report.TotalTime), report.StartTime, report.EndTime)
	tw.printf("Inactive:   %s of %s (threshold %v)\n",
		util.FormatOffset(report.Inactive), util.FormatOffset(report.TotalTime), report.Threshold)

	kinds := make([]string, 0, len(report.ByType))
	for _, tc := range report.ByType {
		kinds = append(kinds, fmt.Sprintf("%s=%d", tc.Type, tc.Count))
	}
	tw.printf("Types:      %s\n\n", strings.Join(kinds, " "))

	if len(report.Segments) == 0 {
		return tw.err
	}

	rows := make([][]string, 0, len(report.Segments))
	for i, seg := range report.Segments {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			seg.Kind,
			util.FormatOffset(seg.Start),
			util.FormatOffset(seg.End),
			seg.Duration.String(),
			strconv.Itoa(seg.Events),
		})
	}
	widths := f.calculateColumnWidths(rows)

	tw.border(widths, "top")
	tw.row(f.headers, widths)
	tw.border(widths, "middle")
	for _, r := range rows {
		tw.row(r, widths)
	}
	tw.border(widths, "bottom")

	return tw.err
}

// calculateColumnWidths determines the display width of each column
func (f *TableFormatter) calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, r := range rows {
		for i, value := range r {
			if w := runewidth.StringWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// tableWriter keeps the first write error so callers check once
type tableWriter struct {
	w   io.Writer
	err error
}

func (t *tableWriter) printf(format string, args ...interface{}) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

// border prints table borders (top, middle, bottom)
func (t *tableWriter) border(widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	default:
		left, middle, right = "└", "┴", "┘"
	}

	var b strings.Builder
	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	t.printf("%s\n", b.String())
}

// row prints a row; the first two columns are left-aligned, the rest right-aligned
func (t *tableWriter) row(values []string, widths []int) {
	var b strings.Builder
	b.WriteString("│")
	for i, value := range values {
		pad := strings.Repeat(" ", widths[i]-runewidth.StringWidth(value))
		if i < 2 {
			b.WriteString(" " + value + pad + " │")
		} else {
			b.WriteString(" " + pad + value + " │")
		}
	}
	t.printf("%s\n", b.String())
}
