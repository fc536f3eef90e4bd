package e2e

import (
	"regexp"
	"strings"
)

var ansiEscape = regexp.MustCompile(`\x1b\[[?0-9;]*[a-zA-Z]`)

// Screen is a virtual terminal that replays cursor movement and clearing,
// so tests can assert on what the last frame left visible.
type Screen struct {
	rows    int
	cols    int
	buffer  [][]rune
	cursorX int
	cursorY int
}

func NewScreen(rows, cols int) *Screen {
	s := &Screen{rows: rows, cols: cols, buffer: make([][]rune, rows)}
	for i := range s.buffer {
		s.buffer[i] = blankRow(cols)
	}
	return s
}

func blankRow(cols int) []rune {
	row := make([]rune, cols)
	for j := range row {
		row[j] = ' '
	}
	return row
}

// StripANSI removes all CSI escape sequences from a string
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// ParseOutput replays output onto a rows x cols screen.
func ParseOutput(output string, rows, cols int) *Screen {
	screen := NewScreen(rows, cols)
	screen.Write(output)
	return screen
}

func (s *Screen) Write(output string) {
	runes := []rune(output)
	for i := 0; i < len(runes); {
		switch {
		case runes[i] == '\x1b' && i+1 < len(runes) && runes[i+1] == '[':
			i = s.handleSequence(runes, i+2)
		case runes[i] == '\r':
			s.cursorX = 0
			i++
		case runes[i] == '\n':
			s.lineFeed()
			i++
		case runes[i] == '\b':
			if s.cursorX > 0 {
				s.cursorX--
			}
			i++
		default:
			s.putChar(runes[i])
			i++
		}
	}
}

// handleSequence reads the parameters of a CSI sequence starting at i and
// returns the index after its final byte. Private sequences such as
// "?1049h" are consumed without effect.
func (s *Screen) handleSequence(runes []rune, i int) int {
	private := false
	if i < len(runes) && runes[i] == '?' {
		private = true
		i++
	}

	var params []int
	current := 0
	for ; i < len(runes); i++ {
		switch r := runes[i]; {
		case r >= '0' && r <= '9':
			current = current*10 + int(r-'0')
		case r == ';':
			params = append(params, current)
			current = 0
		default:
			params = append(params, current)
			if !private {
				s.command(r, params)
			}
			return i + 1
		}
	}
	return i
}

func (s *Screen) command(cmd rune, params []int) {
	arg := func(n, def int) int {
		if len(params) > n && params[n] > 0 {
			return params[n]
		}
		return def
	}

	switch cmd {
	case 'H', 'f':
		s.cursorY = min(s.rows-1, arg(0, 1)-1)
		s.cursorX = min(s.cols-1, arg(1, 1)-1)
	case 'J':
		switch params[0] {
		case 0:
			s.clearLine(s.cursorX, s.cols)
			for i := s.cursorY + 1; i < s.rows; i++ {
				s.buffer[i] = blankRow(s.cols)
			}
		case 2:
			for i := range s.buffer {
				s.buffer[i] = blankRow(s.cols)
			}
		}
	case 'K':
		switch params[0] {
		case 0:
			s.clearLine(s.cursorX, s.cols)
		case 2:
			s.clearLine(0, s.cols)
		}
	case 'A':
		s.cursorY = max(0, s.cursorY-arg(0, 1))
	case 'B':
		s.cursorY = min(s.rows-1, s.cursorY+arg(0, 1))
	case 'C':
		s.cursorX = min(s.cols-1, s.cursorX+arg(0, 1))
	case 'D':
		s.cursorX = max(0, s.cursorX-arg(0, 1))
	}
}

func (s *Screen) clearLine(from, to int) {
	for j := from; j < to; j++ {
		s.buffer[s.cursorY][j] = ' '
	}
}

func (s *Screen) putChar(ch rune) {
	if s.cursorX >= s.cols {
		s.cursorX = 0
		s.lineFeed()
	}
	s.buffer[s.cursorY][s.cursorX] = ch
	s.cursorX++
}

func (s *Screen) lineFeed() {
	s.cursorY++
	if s.cursorY < s.rows {
		return
	}
	copy(s.buffer, s.buffer[1:])
	s.buffer[s.rows-1] = blankRow(s.cols)
	s.cursorY = s.rows - 1
}

// Render returns the screen content as a string
func (s *Screen) Render() string {
	lines := make([]string, s.rows)
	for i := range s.buffer {
		lines[i] = s.Line(i)
	}
	return strings.Join(lines, "\n")
}

// Line returns one row without trailing blanks.
func (s *Screen) Line(row int) string {
	if row < 0 || row >= s.rows {
		return ""
	}
	return strings.TrimRight(string(s.buffer[row]), " ")
}

func (s *Screen) Contains(text string) bool {
	return strings.Contains(s.Render(), text)
}
