package interaction

import (
	"io"
	"os"
	"sync"
)

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
)

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyboardReader reads single key presses from the terminal in raw mode
type KeyboardReader struct {
	in       io.Reader
	restore  func() error
	input    chan KeyEvent
	stop     chan struct{}
	stopOnce sync.Once
}

// NewKeyboardReader puts stdin into raw mode and starts reading keys.
func NewKeyboardReader() (*KeyboardReader, error) {
	return NewKeyboardReaderFrom(os.Stdin)
}

// NewKeyboardReaderFrom reads keys from the terminal behind f.
func NewKeyboardReaderFrom(f *os.File) (*KeyboardReader, error) {
	restore, err := enableRawMode(int(f.Fd()))
	if err != nil {
		return nil, err
	}

	kr := newKeyboardReader(f)
	kr.restore = restore
	return kr, nil
}

func newKeyboardReader(in io.Reader) *KeyboardReader {
	kr := &KeyboardReader{
		in:    in,
		input: make(chan KeyEvent, 10),
		stop:  make(chan struct{}),
	}
	go kr.readInput()
	return kr
}

func (kr *KeyboardReader) readInput() {
	buf := make([]byte, 8)

	for {
		n, err := kr.in.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}

		for _, event := range parseInput(buf[:n]) {
			select {
			case kr.input <- event:
			case <-kr.stop:
				return
			}
		}
	}
}

// parseInput splits one read into key events. A read may hold several keys
// when the user types quickly or a paste arrives.
func parseInput(buf []byte) []KeyEvent {
	var events []KeyEvent
	for len(buf) > 0 {
		if buf[0] != 27 {
			events = append(events, KeyEvent{Key: rune(buf[0]), Type: KeyChar})
			buf = buf[1:]
			continue
		}

		if len(buf) >= 3 && buf[1] == '[' {
			if t, ok := arrowKeys[buf[2]]; ok {
				events = append(events, KeyEvent{Key: rune(buf[2]), Type: t})
			}
			buf = buf[3:]
			continue
		}

		events = append(events, KeyEvent{Key: 27, Type: KeyEscape})
		buf = buf[1:]
	}
	return events
}

var arrowKeys = map[byte]KeyType{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops delivering keys and restores the terminal
func (kr *KeyboardReader) Close() error {
	kr.stopOnce.Do(func() { close(kr.stop) })
	if kr.restore != nil {
		return kr.restore()
	}
	return nil
}
