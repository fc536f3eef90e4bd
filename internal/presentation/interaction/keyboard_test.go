package interaction

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []KeyEvent
	}{
		{
			name:     "regular char",
			input:    []byte{'a'},
			expected: []KeyEvent{{Key: 'a', Type: KeyChar}},
		},
		{
			name:     "escape",
			input:    []byte{27},
			expected: []KeyEvent{{Key: 27, Type: KeyEscape}},
		},
		{
			name:     "ctrl+c",
			input:    []byte{3},
			expected: []KeyEvent{{Key: 3, Type: KeyChar}},
		},
		{
			name:     "arrows",
			input:    []byte("\x1b[D\x1b[C\x1b[A\x1b[B"),
			expected: []KeyEvent{{Key: 'D', Type: KeyLeft}, {Key: 'C', Type: KeyRight}, {Key: 'A', Type: KeyUp}, {Key: 'B', Type: KeyDown}},
		},
		{
			name:     "unknown sequence dropped",
			input:    []byte("\x1b[Zx"),
			expected: []KeyEvent{{Key: 'x', Type: KeyChar}},
		},
		{
			name:     "several keys in one read",
			input:    []byte(" 2s"),
			expected: []KeyEvent{{Key: ' ', Type: KeyChar}, {Key: '2', Type: KeyChar}, {Key: 's', Type: KeyChar}},
		},
		{
			name:  "empty",
			input: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseInput(tt.input))
		})
	}
}

func TestKeyboardReaderDeliversKeys(t *testing.T) {
	r, w := io.Pipe()
	kr := newKeyboardReader(r)
	defer kr.Close()

	go func() {
		_, _ = w.Write([]byte("q\x1b[C"))
	}()

	var got []KeyEvent
	for len(got) < 2 {
		select {
		case ev := <-kr.Events():
			got = append(got, ev)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for keys")
		}
	}
	assert.Equal(t, []KeyEvent{{Key: 'q', Type: KeyChar}, {Key: 'C', Type: KeyRight}}, got)

	require.NoError(t, kr.Close())
	require.NoError(t, kr.Close())
	_ = w.Close()
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		ev   KeyEvent
		want Command
	}{
		{name: "space toggles", ev: KeyEvent{Key: ' ', Type: KeyChar}, want: Command{Action: ActionToggle}},
		{name: "left seeks back", ev: KeyEvent{Key: 'D', Type: KeyLeft}, want: Command{Action: ActionSeekBack}},
		{name: "right seeks forward", ev: KeyEvent{Key: 'C', Type: KeyRight}, want: Command{Action: ActionSeekForward}},
		{name: "speed 1", ev: KeyEvent{Key: '1', Type: KeyChar}, want: Command{Action: ActionSpeedOption, Index: 0}},
		{name: "speed 4", ev: KeyEvent{Key: '4', Type: KeyChar}, want: Command{Action: ActionSpeedOption, Index: 3}},
		{name: "skip", ev: KeyEvent{Key: 's', Type: KeyChar}, want: Command{Action: ActionToggleSkip}},
		{name: "previous", ev: KeyEvent{Key: 'p', Type: KeyChar}, want: Command{Action: ActionPrevious}},
		{name: "next", ev: KeyEvent{Key: 'n', Type: KeyChar}, want: Command{Action: ActionNext}},
		{name: "lock previous", ev: KeyEvent{Key: 'P', Type: KeyChar}, want: Command{Action: ActionTogglePrevious}},
		{name: "lock next", ev: KeyEvent{Key: 'N', Type: KeyChar}, want: Command{Action: ActionToggleNext}},
		{name: "popup", ev: KeyEvent{Key: 'o', Type: KeyChar}, want: Command{Action: ActionPopup}},
		{name: "help", ev: KeyEvent{Key: '?', Type: KeyChar}, want: Command{Action: ActionHelp}},
		{name: "tag", ev: KeyEvent{Key: 't', Type: KeyChar}, want: Command{Action: ActionTag}},
		{name: "quit", ev: KeyEvent{Key: 'q', Type: KeyChar}, want: Command{Action: ActionQuit}},
		{name: "ctrl+c quits", ev: KeyEvent{Key: 3, Type: KeyChar}, want: Command{Action: ActionQuit}},
		{name: "escape quits", ev: KeyEvent{Key: 27, Type: KeyEscape}, want: Command{Action: ActionQuit}},
		{name: "up unbound", ev: KeyEvent{Key: 'A', Type: KeyUp}, want: Command{}},
		{name: "unbound char", ev: KeyEvent{Key: 'z', Type: KeyChar}, want: Command{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.ev))
		})
	}
}
